package fits

import "fmt"

// Header is an ordered sequence of cards. In memory the card count is
// unconstrained; the 36-card block padding is applied only when the
// header is serialized.
type Header struct {
	cards []Card

	// Synthesized lists labels AddRequiredCards had to invent, so a
	// caller can log the recovery.
	Synthesized []string
}

// NewHeader returns a header holding a SIMPLE card and the terminal
// END card.
func NewHeader() *Header {
	h := &Header{}
	h.Add(NewCard("END"))
	h.Add(NewCard("SIMPLE  =                    T"))
	return h
}

// Len returns the number of cards, END included.
func (h *Header) Len() int { return len(h.cards) }

// Card returns the card at position i.
func (h *Header) Card(i int) Card { return h.cards[i] }

// grow reallocates the backing array in whole-block increments. Growth
// happens exactly when the card count has filled the current multiple
// of 36.
func (h *Header) grow() {
	if len(h.cards)%CardsPerBlock != 0 || len(h.cards) < cap(h.cards) {
		return
	}
	next := make([]Card, len(h.cards), len(h.cards)+CardsPerBlock)
	copy(next, h.cards)
	h.cards = next
}

// Add inserts the card immediately before the terminal END card, or
// appends it if no END card exists yet. It returns the position of the
// inserted card.
func (h *Header) Add(c Card) int {
	h.grow()
	end, ok := h.Find(LabelEnd)
	if !ok {
		h.cards = append(h.cards, c)
		return len(h.cards) - 1
	}
	h.cards = append(h.cards, Card{})
	copy(h.cards[end+1:], h.cards[end:len(h.cards)-1])
	h.cards[end] = c
	return end
}

// Find returns the position of the first card whose label matches,
// compared case-insensitively over 8 bytes.
func (h *Header) Find(label string) (int, bool) {
	for i, c := range h.cards {
		if c.HasLabel(label) {
			return i, true
		}
	}
	return 0, false
}

// Delete removes the first card matching the label, compacting the
// remainder. It reports the removed position.
func (h *Header) Delete(label string) (int, bool) {
	i, ok := h.Find(label)
	if !ok {
		return 0, false
	}
	copy(h.cards[i:], h.cards[i+1:])
	h.cards = h.cards[:len(h.cards)-1]
	return i, true
}

// PurgeBlankLabels drops every card whose label bytes are blank and
// returns the number dropped.
func (h *Header) PurgeBlankLabels() int {
	kept := h.cards[:0]
	dropped := 0
	for _, c := range h.cards {
		if c.BlankLabel() {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	h.cards = kept
	return dropped
}

// Int returns the integer value of the first card matching the label.
func (h *Header) Int(label string) (int64, bool) {
	i, ok := h.Find(label)
	if !ok {
		return 0, false
	}
	v, err := h.cards[i].IntValue()
	if err != nil {
		return 0, false
	}
	return v, true
}

// Real returns the real value of the first card matching the label.
func (h *Header) Real(label string) (float64, bool) {
	i, ok := h.Find(label)
	if !ok {
		return 0, false
	}
	v, err := h.cards[i].RealValue()
	if err != nil {
		return 0, false
	}
	return v, true
}

// Str returns the string value of the first card matching the label.
func (h *Header) Str(label string) (string, bool) {
	i, ok := h.Find(label)
	if !ok {
		return "", false
	}
	return h.cards[i].StringValue(), true
}

// setCard replaces the first card matching the new card's label, or
// adds the card if no match exists. It returns the card position.
func (h *Header) setCard(c Card) int {
	if i, ok := h.Find(c.Label()); ok {
		h.cards[i] = c
		return i
	}
	return h.Add(c)
}

// SetInt stores an integer card, replacing any existing card with the
// same label.
func (h *Header) SetInt(label string, v int64) int {
	return h.setCard(IntCard(label, v))
}

// SetReal stores a real card, replacing any existing card with the
// same label.
func (h *Header) SetReal(label string, v float64) int {
	return h.setCard(RealCard(label, v))
}

// SetStr stores a string card, replacing any existing card with the
// same label.
func (h *Header) SetStr(label, v string) int {
	return h.setCard(StringCard(label, v))
}

// AddComment appends a COMMENT card.
func (h *Header) AddComment(text string) int {
	return h.Add(CommentCard(text))
}

// AddHistory appends a HISTORY card.
func (h *Header) AddHistory(text string) int {
	return h.Add(HistoryCard(text))
}

// AddRequiredCards ensures NAXIS and every NAXISk card exist,
// defaulting NAXIS to 0 and each missing extent to 1. The labels of
// synthesized cards are returned and recorded in h.Synthesized; a
// missing geometry card is recoverable, never an error.
func (h *Header) AddRequiredCards() []string {
	var added []string
	naxis, ok := h.Int(LabelNaxis)
	if !ok {
		naxis = 0
		h.SetInt(LabelNaxis, naxis)
		added = append(added, LabelNaxis)
	}
	for k := int64(1); k <= naxis; k++ {
		label := fmt.Sprintf("NAXIS%d", k)
		if _, ok := h.Int(label); !ok {
			h.SetInt(label, 1)
			added = append(added, label)
		}
	}
	h.Synthesized = append(h.Synthesized, added...)
	return added
}

// Axes returns the per-axis extents read from NAXIS and NAXIS1..n. A
// missing NAXIS yields a zero-length result; a missing extent defaults
// to 1, matching AddRequiredCards.
func (h *Header) Axes() []int64 {
	naxis, ok := h.Int(LabelNaxis)
	if !ok || naxis <= 0 {
		return nil
	}
	extents := make([]int64, naxis)
	for k := range extents {
		v, ok := h.Int(fmt.Sprintf("NAXIS%d", k+1))
		if !ok {
			v = 1
		}
		extents[k] = v
	}
	return extents
}

// NData returns the total element count implied by the axis extents,
// zero when the header declares no axes.
func (h *Header) NData() int64 {
	extents := h.Axes()
	if len(extents) == 0 {
		return 0
	}
	n := int64(1)
	for _, e := range extents {
		n *= e
	}
	return n
}

// Bitpix returns the declared pixel encoding.
func (h *Header) Bitpix() (Bitpix, error) {
	v, ok := h.Int(LabelBitpix)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingCard, LabelBitpix)
	}
	b := Bitpix(v)
	if b.Size() == 0 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitpix, v)
	}
	return b, nil
}

// Scaling returns the BSCALE/BZERO pair, defaulting to 1 and 0.
func (h *Header) Scaling() (bscale, bzero float64) {
	bscale, bzero = 1.0, 0.0
	if v, ok := h.Real(LabelBscale); ok {
		bscale = v
	}
	if v, ok := h.Real(LabelBzero); ok {
		bzero = v
	}
	return bscale, bzero
}

// Bytes serializes the header, blank-padded to a whole number of
// 2880-byte blocks.
func (h *Header) Bytes() []byte {
	blocks := (len(h.cards) + CardsPerBlock - 1) / CardsPerBlock
	if blocks == 0 {
		blocks = 1
	}
	out := make([]byte, blocks*BlockSize)
	for i := range out {
		out[i] = ' '
	}
	for i, c := range h.cards {
		copy(out[i*CardLen:], c[:])
	}
	return out
}
