package domain

import "strings"

// Variant holds the selection attributes that, together with the product id,
// identify a cart line. The zero value means "no variant".
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// Normalize trims surrounding whitespace from every attribute.
func (v Variant) Normalize() Variant {
	return Variant{
		Color: strings.TrimSpace(v.Color),
		Size:  strings.TrimSpace(v.Size),
	}
}

// IsZero reports whether no attribute is set.
func (v Variant) IsZero() bool {
	n := v.Normalize()
	return n.Color == "" && n.Size == ""
}

// Key renders the canonical hash string of the variant.
func (v Variant) Key() string {
	n := v.Normalize()
	return "color=" + n.Color + ";size=" + n.Size
}

// Label renders the attributes for human-readable summaries, e.g. "Black, M".
func (v Variant) Label() string {
	n := v.Normalize()
	parts := make([]string, 0, 2)
	if n.Color != "" {
		parts = append(parts, n.Color)
	}
	if n.Size != "" {
		parts = append(parts, n.Size)
	}
	return strings.Join(parts, ", ")
}

// LineKey is the identity of a cart line.
type LineKey struct {
	ProductID string
	Variant   Variant
}

// NewLineKey builds a LineKey with a normalized variant.
func NewLineKey(productID string, variant Variant) LineKey {
	return LineKey{ProductID: strings.TrimSpace(productID), Variant: variant.Normalize()}
}

func (k LineKey) String() string {
	return k.ProductID + "|" + k.Variant.Key()
}

// CartLine is one entry in the cart. Name, price and image are captured when
// the line is added and are never refreshed from the catalog.
type CartLine struct {
	ID             string  `json:"id,omitempty"`
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	Image          string  `json:"image,omitempty"`
	Quantity       int     `json:"quantity"`
	Variant        Variant `json:"variant"`
}

// Key returns the identity key of the line.
func (l CartLine) Key() LineKey {
	return NewLineKey(l.ProductID, l.Variant)
}

// TotalCents is unit price times quantity.
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Cart is an ordered list of lines. Totals are always derived from Lines.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// TotalItems is the sum of line quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalCents is the sum of unit price times quantity over all lines.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.TotalCents()
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the index of the line matching key, or -1.
func (c Cart) Find(key LineKey) int {
	for i, l := range c.Lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// WithLine adds line to the cart. A line with the same identity key has its
// quantity increased; otherwise the line is appended.
func (c Cart) WithLine(line CartLine) Cart {
	line.ProductID = strings.TrimSpace(line.ProductID)
	line.Variant = line.Variant.Normalize()
	out := c.Clone()
	if idx := out.Find(line.Key()); idx >= 0 {
		out.Lines[idx].Quantity += line.Quantity
		return out
	}
	out.Lines = append(out.Lines, line)
	return out
}

// WithoutLine removes the line matching key. Missing lines are ignored.
// Folded rebuilds the cart so each product and variant appears once, summing
// quantities into the first occurrence.
func (c Cart) Folded() Cart {
	var out Cart
	for _, l := range c.Lines {
		out = out.WithLine(l)
	}
	return out
}

func (c Cart) WithoutLine(key LineKey) Cart {
	out := Cart{}
	for _, l := range c.Lines {
		if l.Key() == key {
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}

// WithQuantity sets the quantity of the line matching key. A quantity of zero
// or less removes the line.
func (c Cart) WithQuantity(key LineKey, quantity int) Cart {
	if quantity <= 0 {
		return c.WithoutLine(key)
	}
	out := c.Clone()
	if idx := out.Find(key); idx >= 0 {
		out.Lines[idx].Quantity = quantity
	}
	return out
}
