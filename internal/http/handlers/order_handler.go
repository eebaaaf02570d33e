package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vitashelf/internal/domain"
	applog "vitashelf/internal/log"
	"vitashelf/internal/repos"
	"vitashelf/internal/services"
	"vitashelf/internal/validate"
)

type OrderHandler struct {
	Cart     *services.CartSessionService
	Checkout *services.CheckoutService
	Repo     *repos.OrderRepo
	Auth     *services.AuthService
}

func (h *OrderHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

func (h *OrderHandler) identity(sid string) string {
	if h.Auth == nil {
		return ""
	}
	return h.Auth.Identity(sid)
}

// GET /checkout
func (h *OrderHandler) CheckoutPage(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	cv, err := h.Cart.View(c.Context(), sid, h.identity(sid))
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "checkout", fiber.Map{"Cart": cv})
}

// POST /orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := h.ensureSID(c)

	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid email")
	}
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "name"})
		return c.Status(fiber.StatusBadRequest).SendString("name must be 1-40 characters")
	}

	orderID, err := h.Checkout.Place(c.Context(), sid, h.identity(sid), services.Contact{Name: name, Email: email})
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"sid": sid, "error": err.Error()})
		return c.Status(fiber.StatusBadRequest).SendString("Could not place order. Please review your cart and try again.")
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": orderID})

	return c.Redirect("/order/" + orderID)
}

// GET /order/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid := c.Params("id")
	if oid == "" {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	o, items, err := h.Repo.Get(oid)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	// Ownership check: session owner or same user via sessions.user_id; admins allowed
	sid := c.Cookies("sid")
	var uID string
	var uRole string
	if h.Auth != nil && sid != "" {
		if u, err := h.Auth.CurrentUser(sid); err == nil && u != nil {
			uID = u.ID
			uRole = u.Role
		}
	}
	if !(sid != "" && sid == o.SessionID) && !(uID != "" && uID == o.UserID) {
		if uRole == "ADMIN" {
			return render(c, "order", fiber.Map{"Order": o, "Items": items})
		}
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Orders not available"})
	}
	orders, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	// Fallback: show session orders if none linked to user (e.g., pre-login)
	if len(orders) == 0 {
		if sid := c.Cookies("sid"); sid != "" {
			if sessOrders, err := h.Repo.ListBySession(sid); err == nil && len(sessOrders) > 0 {
				orders = sessOrders
			}
		}
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
