package dosing

import (
	"math"
	"strconv"
	"strings"
)

// InputDecimals is the decimal precision kept for weight and dose text fields.
const InputDecimals = 4

// CleanWhileTyping sanitizes free-form decimal text on every keystroke.
// Only ASCII digits and the first period survive, and the fraction is
// truncated to maxDecimals digits. Partial input such as "3." or "" is preserved.
func CleanWhileTyping(raw string, maxDecimals int) string {
	if raw == "" {
		return ""
	}
	if maxDecimals < 0 {
		maxDecimals = 0
	}

	var b strings.Builder
	b.Grow(len(raw))

	seenDot := false
	fraction := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '.':
			if seenDot {
				continue
			}
			seenDot = true
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if seenDot {
				if fraction >= maxDecimals {
					continue
				}
				fraction++
			}
			b.WriteByte(c)
		}
	}

	return b.String()
}

// NormalizeOnCommit cleans raw text and re-renders it as the shortest decimal
// rounded to at most maxDecimals places. Unparseable input commits as "".
func NormalizeOnCommit(raw string, maxDecimals int) string {
	cleaned := CleanWhileTyping(raw, maxDecimals)
	if cleaned == "" {
		return ""
	}

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}

	decimals := 0
	if dot := strings.IndexByte(cleaned, '.'); dot >= 0 {
		decimals = len(cleaned) - dot - 1
	}
	n = roundTo(n, decimals)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseDose reads a user-entered dose. A comma decimal separator is accepted.
// Empty or unparseable text returns nil, which is distinct from a zero dose.
func ParseDose(text string) *float64 {
	raw := strings.Replace(strings.TrimSpace(text), ",", ".", 1)
	if !isDecimalText(raw) {
		return nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}

	return &n
}

// ParseWeight reads committed or in-progress weight text; anything unparseable is 0.
func ParseWeight(text string) float64 {
	raw := strings.TrimSpace(text)
	if !isDecimalText(raw) {
		return 0
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(n)
}

// FormatNumber renders n as the shortest decimal text without exponent.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Round rounds n half up to the given decimals, as results are displayed.
func Round(n float64, decimals int) float64 {
	return roundHalfUp(n, decimals)
}

// roundTo rounds half away from zero at the given number of decimals.
// Magnitudes past 2^52 carry no fraction and are returned as is.
func roundTo(n float64, decimals int) float64 {
	if math.Abs(n) >= 1<<52 {
		return n
	}
	if decimals <= 0 {
		return math.Round(n)
	}
	p := math.Pow10(decimals)
	return math.Round(n*p) / p
}

// isDecimalText reports whether s is plain decimal notation: digits, a point,
// sign and exponent. Hex floats and spelled-out infinities are refused.
func isDecimalText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}

// roundHalfUp rounds to the given decimals with ties going up, nudged by one
// epsilon so values like 1.005 land on the expected side.
func roundHalfUp(n float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Floor((finiteOrZero(n)+epsilon)*p+0.5) / p
}

const epsilon = 2.220446049250313e-16

func finiteOrZero(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
