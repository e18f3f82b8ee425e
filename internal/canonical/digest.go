package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/tenpin/internal/scoring"
)

// Digest domains. The version suffix leaves room to change an encoding
// without colliding with stored digests.
const (
	DomainBoard = "tenpin/board/v1"
	DomainRolls = "tenpin/rolls/v1"
)

// Hash computes SHA256(domain || 0x00 || data) as lowercase hex.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Board encodes a scoreboard and returns the bytes with their digest.
func Board(b scoring.Scoreboard) ([]byte, string, error) {
	data, err := Marshal(b.Fields())
	if err != nil {
		return nil, "", fmt.Errorf("board %s: %w", b.GameID, err)
	}
	return data, Hash(DomainBoard, data), nil
}

// Rolls digests a game's pin sequence.
func Rolls(gameID string, pins []int) (string, error) {
	data, err := Marshal(map[string]any{"game_id": gameID, "pins": pins})
	if err != nil {
		return "", fmt.Errorf("rolls %s: %w", gameID, err)
	}
	return Hash(DomainRolls, data), nil
}
