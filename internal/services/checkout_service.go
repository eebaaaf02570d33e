package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"vitashelf/internal/repos"
)

var ErrEmptyCart = errors.New("cart is empty")

type Contact struct {
	Name  string
	Email string
}

// CheckoutService turns a cart view into a stored order. Payment is a
// simulated step: orders go straight to PLACED.
type CheckoutService struct {
	Cart   *CartSessionService
	Orders *repos.OrderRepo
}

func NewCheckoutService(cartSvc *CartSessionService, orders *repos.OrderRepo) *CheckoutService {
	return &CheckoutService{Cart: cartSvc, Orders: orders}
}

func (s *CheckoutService) Place(ctx context.Context, sid, identity string, contact Contact) (string, error) {
	cv, err := s.Cart.View(ctx, sid, identity)
	if err != nil {
		return "", err
	}
	if len(cv.Lines) == 0 {
		return "", ErrEmptyCart
	}

	orderID := uuid.NewString()
	if err := s.Orders.Create(orderID, sid, contact.Name, contact.Email, cv.Subtotal, cv.Shipping, cv.VAT, cv.Total); err != nil {
		return "", err
	}
	for _, l := range cv.Lines {
		vid, vlabel := "", ""
		if l.Variant != nil {
			vid, vlabel = l.Variant.ID, l.Variant.Label
		}
		if err := s.Orders.InsertItem(orderID, l.Product.ID, vid, l.Product.Name, vlabel, l.Qty, l.UnitPrice()); err != nil {
			return "", err
		}
	}

	// lines are spent; the identity association survives the order
	s.Cart.EmptyLines(ctx, sid)
	return orderID, nil
}
