package scoring

import (
	"fmt"
	"strings"
)

// FrameView is the read-only rendering of one frame for a scoreboard.
type FrameView struct {
	Rolls []string `json:"rolls"`
	// Total is nil while the frame's cumulative score is pending.
	Total *int `json:"total,omitempty"`
}

// Scoreboard is a snapshot of a session for renderers and HUDs.
type Scoreboard struct {
	GameID   string                `json:"game_id"`
	Frames   [FrameCount]FrameView `json:"frames"`
	Frame    int                   `json:"frame"`
	Roll     int                   `json:"roll"`
	GameOver bool                  `json:"game_over"`
	Total    int                   `json:"total"`
}

// Board snapshots the session. The result shares no memory with the session.
func (s *Session) Board() Scoreboard {
	b := Scoreboard{
		GameID:   s.id,
		Frame:    s.frame,
		Roll:     s.roll,
		GameOver: s.over,
		Total:    s.Total(),
	}
	for i, f := range s.frames {
		v := FrameView{Rolls: make([]string, 0, len(f.Rolls))}
		for _, r := range f.Rolls {
			v.Rolls = append(v.Rolls, r.Symbol())
		}
		if f.Scored {
			total := f.Cumulative
			v.Total = &total
		}
		b.Frames[i] = v
	}
	return b
}

// Fields flattens the board into plain maps and slices for canonical encoding.
// Pending totals are omitted rather than encoded as null.
func (b Scoreboard) Fields() map[string]any {
	frames := make([]any, len(b.Frames))
	for i, f := range b.Frames {
		rolls := make([]any, len(f.Rolls))
		for j, r := range f.Rolls {
			rolls[j] = r
		}
		fm := map[string]any{"rolls": rolls}
		if f.Total != nil {
			fm["total"] = *f.Total
		}
		frames[i] = fm
	}
	return map[string]any{
		"game_id":   b.GameID,
		"frames":    frames,
		"frame":     b.Frame,
		"roll":      b.Roll,
		"game_over": b.GameOver,
		"total":     b.Total,
	}
}

// String renders a two-line score sheet, roll symbols on top and running
// totals underneath.
func (b Scoreboard) String() string {
	var top, bottom strings.Builder
	for _, f := range b.Frames {
		top.WriteString("|")
		top.WriteString(fmt.Sprintf("%-5s", strings.Join(f.Rolls, " ")))
		bottom.WriteString("|")
		if f.Total != nil {
			bottom.WriteString(fmt.Sprintf("%5d", *f.Total))
		} else {
			bottom.WriteString("     ")
		}
	}
	top.WriteString("|")
	bottom.WriteString("|")
	return top.String() + "\n" + bottom.String()
}
