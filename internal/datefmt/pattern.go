package datefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// patternTokens is ordered longest first so "MMMM" wins over "MM" and "M".
var patternTokens = []string{
	"YYYY", "MMMM", "dddd",
	"MMM", "ddd",
	"YY", "MM", "DD", "dd",
	"M", "D",
}

// apply substitutes pattern tokens with localized date components.
// Text inside square brackets is copied literally, brackets removed.
func (n *names) apply(pattern string, t time.Time) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			if end := strings.IndexByte(pattern[i+1:], ']'); end >= 0 {
				b.WriteString(pattern[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}

		matched := false
		for _, tok := range patternTokens {
			if strings.HasPrefix(pattern[i:], tok) {
				b.WriteString(n.component(tok, t))
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}

// component renders a single token.
func (n *names) component(token string, t time.Time) string {
	switch token {
	case "YYYY":
		return strconv.Itoa(t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MMMM":
		return n.months[t.Month()-1]
	case "MMM":
		return n.monthsShort[t.Month()-1]
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return n.weekdays[t.Weekday()]
	case "ddd":
		return n.weekdaysShort[t.Weekday()]
	case "dd":
		return n.weekdaysMin[t.Weekday()]
	}
	return token
}
