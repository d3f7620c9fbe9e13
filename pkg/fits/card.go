package fits

import (
	"fmt"
	"strconv"
	"strings"
)

// Card is one fixed-width header record: an 8-character label, an
// optional "= value" region starting at byte 10, and free text after.
// Cards are always blank-padded to the full width.
type Card [CardLen]byte

// NewCard builds a card from raw text. The text is truncated at the
// first NUL or newline, blank-padded to the card width, and the label
// bytes are folded to upper case.
func NewCard(text string) Card {
	var c Card
	for i := range c {
		c[i] = ' '
	}
	for i := 0; i < len(text) && i < CardLen; i++ {
		ch := text[i]
		if ch == 0 || ch == '\n' || ch == '\r' {
			break
		}
		c[i] = ch
	}
	for i := 0; i < 8; i++ {
		if c[i] >= 'a' && c[i] <= 'z' {
			c[i] -= 'a' - 'A'
		}
	}
	return c
}

// IntCard builds a key=value card with a right-justified integer value.
func IntCard(label string, v int64) Card {
	return NewCard(fmt.Sprintf("%-8.8s= %20d", label, v))
}

// RealCard builds a key=value card with an exponential real value.
// Seven significant decimals is the most the 20-character field
// round-trips reliably.
func RealCard(label string, v float64) Card {
	return NewCard(fmt.Sprintf("%-8.8s= %20.7E", label, v))
}

// StringCard builds a key=value card with a quoted string value.
func StringCard(label, v string) Card {
	return NewCard(fmt.Sprintf("%-8.8s= '%-1.68s'", label, v))
}

// CommentCard builds a COMMENT card.
func CommentCard(text string) Card {
	return NewCard(fmt.Sprintf("COMMENT %-1.72s", text))
}

// HistoryCard builds a HISTORY card.
func HistoryCard(text string) Card {
	return NewCard(fmt.Sprintf("HISTORY %-1.72s", text))
}

// EndCard returns the terminal header card.
func EndCard() Card { return NewCard(LabelEnd) }

// Label returns the card label with trailing blanks removed.
func (c Card) Label() string {
	return strings.TrimRight(string(c[:8]), " ")
}

// HasLabel reports whether the card label matches, comparing the first
// 8 bytes case-insensitively with blank padding.
func (c Card) HasLabel(label string) bool {
	for i := 0; i < 8; i++ {
		var want byte = ' '
		if i < len(label) {
			want = label[i]
		}
		got := c[i]
		if got >= 'a' && got <= 'z' {
			got -= 'a' - 'A'
		}
		if want >= 'a' && want <= 'z' {
			want -= 'a' - 'A'
		}
		if got != want {
			return false
		}
	}
	return true
}

// IsBlank reports whether the card is entirely blank.
func (c Card) IsBlank() bool {
	for _, b := range c {
		if b != ' ' {
			return false
		}
	}
	return true
}

// BlankLabel reports whether the label bytes are blank, which marks a
// padding or continuation card.
func (c Card) BlankLabel() bool {
	for i := 0; i < 8; i++ {
		if c[i] != ' ' {
			return false
		}
	}
	return true
}

// String returns the raw 80-character card text.
func (c Card) String() string { return string(c[:]) }

// valueField returns the fixed 20-character numeric value region.
func (c Card) valueField() string {
	return string(c[10:30])
}

// IntValue parses the value region as an integer.
func (c Card) IntValue() (int64, error) {
	s := strings.TrimSpace(c.valueField())
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fits: card %s: bad integer value %q", c.Label(), s)
	}
	return v, nil
}

// RealValue parses the value region as a real number.
func (c Card) RealValue() (float64, error) {
	s := strings.TrimSpace(c.valueField())
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("fits: card %s: bad real value %q", c.Label(), s)
	}
	return v, nil
}

// StringValue parses the value region as a quoted string. The value
// opens with a quote at byte 10 and runs to the next quote or the end
// of the card. Trailing blanks are trimmed, leading blanks kept. A
// card without an opening quote yields the empty string.
func (c Card) StringValue() string {
	if c[10] != '\'' {
		return ""
	}
	end := CardLen
	for i := 11; i < CardLen; i++ {
		if c[i] == '\'' {
			end = i
			break
		}
	}
	return strings.TrimRight(string(c[11:end]), " ")
}
