package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"vitashelf/internal/cart"
	applog "vitashelf/internal/log"
	"vitashelf/internal/repos"
)

// CheckoutPolicy holds the pricing constants layered on top of the cart
// subtotal: free-shipping threshold, flat shipping fee, and the VAT rate
// (prices are VAT-inclusive; the VAT figure shown is the contained share).
type CheckoutPolicy struct {
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
	VATRate          decimal.Decimal
}

func DefaultPolicy() CheckoutPolicy {
	return CheckoutPolicy{
		FreeShippingOver: decimal.RequireFromString("49.00"),
		ShippingFee:      decimal.RequireFromString("4.95"),
		VATRate:          decimal.RequireFromString("0.19"),
	}
}

// PolicyFromStrings parses configured policy values, falling back to the
// defaults on bad input.
func PolicyFromStrings(freeOver, fee, vat string) CheckoutPolicy {
	p := DefaultPolicy()
	if d, err := decimal.NewFromString(freeOver); err == nil {
		p.FreeShippingOver = d
	}
	if d, err := decimal.NewFromString(fee); err == nil {
		p.ShippingFee = d
	}
	if d, err := decimal.NewFromString(vat); err == nil {
		p.VATRate = d
	}
	return p
}

// CartView is what the templates render: lines plus derived checkout figures.
type CartView struct {
	Lines     []cart.Line
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	VAT       decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
	LastAdded *cart.Line
	PanelOpen bool
	Identity  string
}

// CartSessionService owns the read-modify-write cycle around the cart
// engine: load the snapshot for the session, reconcile the caller's
// identity, apply the mutation, persist. Persistence is write-through but
// failures never surface to the shopper; the in-memory result stays
// authoritative for the request.
//
// The merge-or-append logic in the engine is a check-then-act sequence, so
// concurrent requests for one session are serialized with a per-session
// mutex.
type CartSessionService struct {
	Store  cart.Store
	Prods  *repos.ProductRepo
	Policy CheckoutPolicy

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCartSessionService(store cart.Store, prods *repos.ProductRepo, policy CheckoutPolicy) *CartSessionService {
	return &CartSessionService{Store: store, Prods: prods, Policy: policy, locks: make(map[string]*sync.Mutex)}
}

func (s *CartSessionService) lock(sid string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[sid]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sid] = m
	}
	return m
}

// load restores the session cart from the store. Load errors and corrupt
// snapshots both yield a fresh empty cart: a broken store must not block
// shopping.
func (s *CartSessionService) load(ctx context.Context, sid string) *cart.Cart {
	snap, ok, err := s.Store.Load(ctx, sid)
	if err != nil {
		applog.Error(nil, "cart.load.fail", err, map[string]any{"sid": sid})
		return cart.New()
	}
	if !ok {
		return cart.New()
	}
	return cart.FromSnapshot(snap)
}

func (s *CartSessionService) persist(ctx context.Context, sid string, c *cart.Cart) {
	if err := s.Store.Save(ctx, sid, c.Snapshot()); err != nil {
		applog.Error(nil, "cart.persist.fail", err, map[string]any{"sid": sid})
	}
}

func (s *CartSessionService) view(c *cart.Cart) CartView {
	sub := c.Subtotal()
	shipping := decimal.Zero
	if c.Len() > 0 && sub.LessThan(s.Policy.FreeShippingOver) {
		shipping = s.Policy.ShippingFee
	}
	// contained VAT share of the (inclusive) subtotal
	one := decimal.NewFromInt(1)
	vat := sub.Sub(sub.Div(one.Add(s.Policy.VATRate))).Round(2)
	return CartView{
		Lines:     c.Lines(),
		Subtotal:  sub,
		Shipping:  shipping,
		VAT:       vat,
		Total:     sub.Add(shipping),
		ItemCount: c.ItemCount(),
		LastAdded: c.LastAdded(),
		PanelOpen: c.PanelOpen(),
		Identity:  c.Identity(),
	}
}

// View returns the current cart for the session, reconciling identity first
// so a login/logout is reflected on the next page load.
func (s *CartSessionService) View(ctx context.Context, sid, identity string) (CartView, error) {
	m := s.lock(sid)
	m.Lock()
	defer m.Unlock()

	c := s.load(ctx, sid)
	before := c.Identity()
	c.SyncIdentity(identity)
	if c.Identity() != before {
		s.persist(ctx, sid, c)
	}
	return s.view(c), nil
}

// Add looks up the product (and optional variant) snapshot and merges it
// into the session cart. suppressPanel keeps the notification drawer closed
// for buy-now style flows.
func (s *CartSessionService) Add(ctx context.Context, sid, identity, productID, variantID string, qty int, suppressPanel bool) (CartView, error) {
	p, err := s.Prods.Get(productID)
	if err != nil {
		return CartView{}, err
	}
	snap := cart.Product{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		PackageInfo:   p.PackageInfo,
	}
	opts := cart.AddOptions{SuppressPanel: suppressPanel}
	if variantID != "" {
		v, err := s.Prods.Variant(productID, variantID)
		if err != nil {
			return CartView{}, err
		}
		opts.Variant = &cart.Variant{
			ID:      v.ID,
			Label:   v.Label,
			Price:   v.Price,
			Dosage:  v.Dosage,
			PackQty: v.PackQty,
			Flavor:  v.Flavor,
		}
	}

	m := s.lock(sid)
	m.Lock()
	defer m.Unlock()

	c := s.load(ctx, sid)
	c.SyncIdentity(identity)
	if err := c.Add(snap, qty, opts); err != nil {
		return CartView{}, err
	}
	s.persist(ctx, sid, c)
	return s.view(c), nil
}

// Remove drops the matching line. Removing an absent line is a no-op.
func (s *CartSessionService) Remove(ctx context.Context, sid, identity, productID, variantID string) (CartView, error) {
	m := s.lock(sid)
	m.Lock()
	defer m.Unlock()

	c := s.load(ctx, sid)
	c.SyncIdentity(identity)
	c.Remove(productID, variantID)
	s.persist(ctx, sid, c)
	return s.view(c), nil
}

// SetQuantity overwrites a line's quantity; zero removes the line.
func (s *CartSessionService) SetQuantity(ctx context.Context, sid, identity, productID string, qty int, variantID string) (CartView, error) {
	m := s.lock(sid)
	m.Lock()
	defer m.Unlock()

	c := s.load(ctx, sid)
	c.SyncIdentity(identity)
	c.SetQuantity(productID, qty, variantID)
	s.persist(ctx, sid, c)
	return s.view(c), nil
}

// Clear wipes the cart entirely, identity included, and drops the stored
// snapshot.
func (s *CartSessionService) Clear(ctx context.Context, sid string) error {
	m := s.lock(sid)
	m.Lock()
	defer m.Unlock()

	if err := s.Store.Delete(ctx, sid); err != nil {
		applog.Error(nil, "cart.clear.fail", err, map[string]any{"sid": sid})
	}
	return nil
}

// EmptyLines removes all lines but keeps the identity association. Used
// after a successful order so the shopper stays "logged in" to their cart.
func (s *CartSessionService) EmptyLines(ctx context.Context, sid string) {
	m := s.lock(sid)
	m.Lock()
	defer m.Unlock()

	c := s.load(ctx, sid)
	id := c.Identity()
	c.Clear()
	c.SyncIdentity(id)
	s.persist(ctx, sid, c)
}
