package harness

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/tenpin/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nEvent trace:\n")
		for _, entry := range e.Trace {
			if entry.Type != TraceEvent {
				continue
			}
			fmt.Fprintf(&buf, "  [seq %d] %s", entry.Seq, entry.Kind)
			if entry.Detail != "" {
				fmt.Fprintf(&buf, " %s", entry.Detail)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// matches reports whether a trace entry satisfies a trace_contains assertion.
func (a Assertion) matches(entry TraceEntry) bool {
	if entry.Kind != a.Kind {
		return false
	}
	if a.Frame != nil && entry.Frame != *a.Frame {
		return false
	}
	if a.Roll != nil && entry.Roll != *a.Roll {
		return false
	}
	return a.Detail == "" || entry.Detail == a.Detail
}

// assertTraceContains checks that some trace entry matches the kind and any
// given frame, roll and detail.
func assertTraceContains(trace []TraceEntry, assertion Assertion) error {
	for _, entry := range trace {
		if assertion.matches(entry) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeEntry(assertion),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func describeEntry(a Assertion) string {
	desc := a.Kind
	if a.Frame != nil {
		desc += fmt.Sprintf(" frame=%d", *a.Frame)
	}
	if a.Roll != nil {
		desc += fmt.Sprintf(" roll=%d", *a.Roll)
	}
	if a.Detail != "" {
		desc += fmt.Sprintf(" detail=%s", a.Detail)
	}
	return desc
}

// assertTraceOrder checks that the kinds appear as a subsequence of the
// trace. Intervening entries are allowed and a kind may repeat.
func assertTraceOrder(trace []TraceEntry, assertion Assertion) error {
	next := 0
	for _, entry := range trace {
		if next < len(assertion.Kinds) && entry.Kind == assertion.Kinds[next] {
			next++
		}
	}
	if next == len(assertion.Kinds) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("kinds in order: %v", assertion.Kinds),
		Actual:   fmt.Sprintf("matched %v, then no %s", assertion.Kinds[:next], assertion.Kinds[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the kind appears exactly the specified number
// of times.
func assertTraceCount(trace []TraceEntry, assertion Assertion) error {
	count := 0
	for _, entry := range trace {
		if entry.Kind == assertion.Kind {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertBoard checks the final scoreboard fields named in Expect. "mode"
// checks the final game mode.
func assertBoard(result *Result, assertion Assertion) error {
	fields := result.Board.Fields()
	fields["mode"] = result.Mode

	keys := sortedKeys(assertion.Expect)
	for _, key := range keys {
		expected := assertion.Expect[key]
		actual, ok := fields[key]
		if !ok || key == "frames" {
			return fmt.Errorf("board assertion: unknown field %q", key)
		}
		if !stateValuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertBoard,
				Expected: fmt.Sprintf("%s = %v", key, expected),
				Actual:   fmt.Sprintf("%s = %v", key, actual),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

// assertFrames checks roll symbols and cumulative totals frame by frame.
func assertFrames(result *Result, assertion Assertion) error {
	for i, want := range assertion.Frames {
		got := result.Board.Frames[i]
		if want.Rolls != nil && !reflect.DeepEqual(want.Rolls, got.Rolls) {
			return &AssertionError{
				Type:     AssertFrames,
				Expected: fmt.Sprintf("frame %d rolls %v", i+1, want.Rolls),
				Actual:   fmt.Sprintf("frame %d rolls %v", i+1, got.Rolls),
			}
		}
		if !reflect.DeepEqual(want.Total, got.Total) {
			return &AssertionError{
				Type:     AssertFrames,
				Expected: fmt.Sprintf("frame %d total %s", i+1, formatTotal(want.Total)),
				Actual:   fmt.Sprintf("frame %d total %s", i+1, formatTotal(got.Total)),
			}
		}
	}
	return nil
}

func formatTotal(t *int) string {
	if t == nil {
		return "pending"
	}
	return fmt.Sprint(*t)
}

// assertFinalState checks that the journal table has exactly one row
// matching Where and that the row carries the expected values.
//
// Security: Table and column names are validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]any, len(columns))
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	for _, key := range sortedKeys(assertion.Expect) {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}
		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expectedValue, expectedValue),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}
	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are sorted
// for determinism.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML scalar to a SQL-compatible value.
func toSQLValue(v any) any {
	switch val := v.(type) {
	case string, int, int64, bool:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stateValuesEqual compares a YAML-decoded expectation with a board field or
// a SQLite column. SQLite returns int64 for integers, stores booleans as 0/1
// and may return TEXT as []byte.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	switch exp := expected.(type) {
	case string:
		actualStr, ok := actual.(string)
		return ok && exp == actualStr
	case int:
		switch act := actual.(type) {
		case int64:
			return int64(exp) == act
		case int:
			return exp == act
		}
		return false
	case bool:
		switch act := actual.(type) {
		case bool:
			return exp == act
		case int64:
			return exp == (act != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides journal access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertBoard:
			err = assertBoard(result, assertion)
		case AssertFrames:
			err = assertFrames(result, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires journal context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
