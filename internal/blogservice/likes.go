package blogservice

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseLikes reads a like count from a raw JSON value. Numbers and numeric
// strings ("7") are accepted; fractions are truncated. It reports false for
// absent, null, negative or non-numeric input.
func ParseLikes(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}

// NormalizeLikes is ParseLikes defaulting to zero.
func NormalizeLikes(raw json.RawMessage) int {
	n, ok := ParseLikes(raw)
	if !ok {
		return 0
	}
	return n
}
