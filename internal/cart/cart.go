// Package cart implements the in-memory shopping cart aggregate: ordered
// lines keyed by (product, optional variant), merge-or-append adds, derived
// totals, and the guest/user identity lifecycle.
//
// A Cart is not safe for concurrent use. Callers that share one cart across
// goroutines (e.g. per-session server state) must serialize access per key.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidProduct is returned when a product without a stable id is added.
	ErrInvalidProduct = errors.New("cart: product id required")
	// ErrInvalidQuantity is returned when Add is called with qty < 1.
	ErrInvalidQuantity = errors.New("cart: quantity must be >= 1")
)

// Product is a value snapshot of a catalog product taken at add time.
// Catalog edits after the add do not retroactively change cart lines.
type Product struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Brand         string              `json:"brand,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price,omitempty"`
	PackageInfo   string              `json:"package_info,omitempty"`
}

// Variant is a value snapshot of a product variant. Its price overrides the
// product's base price while the variant is attached to a line.
type Variant struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Price   decimal.Decimal `json:"price"`
	Dosage  string          `json:"dosage,omitempty"`
	PackQty int             `json:"pack_qty,omitempty"`
	Flavor  string          `json:"flavor,omitempty"`
}

// Line is one cart entry. Two lines are the same line iff their product id
// and variant id (or absence of one) are both equal.
type Line struct {
	Product Product  `json:"product"`
	Variant *Variant `json:"variant,omitempty"`
	Qty     int      `json:"qty"`
}

// UnitPrice is the variant price when a variant is attached, else the
// product base price.
func (l Line) UnitPrice() decimal.Decimal {
	if l.Variant != nil {
		return l.Variant.Price
	}
	return l.Product.Price
}

func (l Line) variantID() string {
	if l.Variant == nil {
		return ""
	}
	return l.Variant.ID
}

// Subtotal is UnitPrice * Qty for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Qty)))
}

// AddOptions tunes a single Add call.
type AddOptions struct {
	// Variant attaches a variant snapshot to the line and makes it part of
	// the line identity.
	Variant *Variant
	// SuppressPanel keeps the notification panel closed for this add
	// (buy-now style flows). Default is to open it.
	SuppressPanel bool
}

// Cart is a single-identity aggregate of cart lines plus transient UI state.
// The zero value is not usable; call New.
type Cart struct {
	lines     []Line
	identity  string // "" = guest / unassociated
	lastAdded *Line
	panelOpen bool
}

func New() *Cart { return &Cart{} }

// SyncIdentity reconciles the cart with the identity of the current caller
// ("" for guests). Only a change to a different non-guest identity discards
// the cart contents; the first association keeps them, and a guest candidate
// never counts as a switch, so the cart survives logout. Must run before
// identity-sensitive mutations so a cart carried over from a previous
// session resets exactly once per change.
func (c *Cart) SyncIdentity(candidate string) {
	switch {
	case candidate == "" || c.identity == candidate:
		// no-op: logout or same identity
	case c.identity == "":
		// first association: keep lines
		c.identity = candidate
	default:
		c.lines = nil
		c.lastAdded = nil
		c.panelOpen = false
		c.identity = candidate
	}
}

// Add merges qty into an existing line with the same (product, variant)
// identity, or appends a new line. The merged/appended line becomes
// LastAdded and the notification panel opens unless suppressed.
func (c *Cart) Add(p Product, qty int, opts AddOptions) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}

	vid := ""
	if opts.Variant != nil {
		vid = opts.Variant.ID
	}

	idx := c.find(p.ID, vid)
	if idx >= 0 {
		// Additive merge: only quantity accumulates, the stored
		// product/variant snapshot stays as it was first added.
		c.lines[idx].Qty += qty
	} else {
		c.lines = append(c.lines, Line{Product: p, Variant: cloneVariant(opts.Variant), Qty: qty})
		idx = len(c.lines) - 1
	}

	added := cloneLine(c.lines[idx])
	c.lastAdded = &added
	if !opts.SuppressPanel {
		c.panelOpen = true
	}
	return nil
}

// Remove deletes the line matching the identity key exactly. Removing a
// missing line is a no-op.
func (c *Cart) Remove(productID, variantID string) {
	idx := c.find(productID, variantID)
	if idx < 0 {
		return
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
}

// SetQuantity overwrites the quantity of the matching line. Zero or negative
// means remove. Unlike Add this does not accumulate; the quantity stepper in
// the UI relies on set-to semantics.
func (c *Cart) SetQuantity(productID string, qty int, variantID string) {
	if qty <= 0 {
		c.Remove(productID, variantID)
		return
	}
	if idx := c.find(productID, variantID); idx >= 0 {
		c.lines[idx].Qty = qty
	}
}

// Clear empties the cart and forgets the associated identity. Stronger than
// an identity switch, which only replaces the identity.
func (c *Cart) Clear() {
	c.lines = nil
	c.identity = ""
	c.lastAdded = nil
	c.panelOpen = false
}

func (c *Cart) OpenPanel()  { c.panelOpen = true }
func (c *Cart) ClosePanel() { c.panelOpen = false }

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = cloneLine(l)
	}
	return out
}

// LastAdded is the most recently added or merged line, reflecting its
// quantity after the add. Nil until the first add.
func (c *Cart) LastAdded() *Line {
	if c.lastAdded == nil {
		return nil
	}
	l := cloneLine(*c.lastAdded)
	return &l
}

func (c *Cart) PanelOpen() bool  { return c.panelOpen }
func (c *Cart) Identity() string { return c.identity }
func (c *Cart) Len() int         { return len(c.lines) }

// Subtotal sums unit price * quantity over all lines with decimal precision.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the total number of units across all lines, not the number
// of lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Qty
	}
	return n
}

func (c *Cart) find(productID, variantID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID && l.variantID() == variantID {
			return i
		}
	}
	return -1
}

func cloneVariant(v *Variant) *Variant {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneLine(l Line) Line {
	l.Variant = cloneVariant(l.Variant)
	return l
}
