package handlers

import (
	"vitashelf/internal/cart"
	applog "vitashelf/internal/log"
	"vitashelf/internal/services"
	"vitashelf/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CartHandler struct {
	Cart *services.CartSessionService
	Auth *services.AuthService
}

func (h *CartHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{Name: "sid", Value: sid, Path: "/", HTTPOnly: true, SameSite: fiber.CookieSameSiteLaxMode})
	}
	return sid
}

func (h *CartHandler) identity(sid string) string {
	if h.Auth == nil {
		return ""
	}
	return h.Auth.Identity(sid)
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	cv, err := h.Cart.View(c.Context(), sid, h.identity(sid))
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

// POST /cart
// Adds a product (optionally a variant) to the cart.
// buyNow=1 suppresses the notification drawer and goes straight to checkout.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := h.ensureSID(c)

	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(400).SendString("missing productId")
	}
	variantID, ok := validate.OptionalID(c.FormValue("variantId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "variantId"})
		return c.Status(400).SendString("invalid variantId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	buyNow := c.FormValue("buyNow") == "1"

	cv, err := h.Cart.Add(c.Context(), sid, h.identity(sid), productID, variantID, qty, buyNow)
	if err != nil {
		switch err {
		case cart.ErrInvalidProduct, cart.ErrInvalidQuantity:
			return c.Status(400).SendString(err.Error())
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": productID, "variant": variantID})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}

	applog.Info(c, "cart.add", map[string]any{"product": productID, "variant": variantID, "qty": qty, "items": cv.ItemCount})
	// the drawer script adds via XHR and renders the panel from this state
	if c.Get("X-Requested-With") == "XMLHttpRequest" {
		return c.JSON(fiber.Map{
			"itemCount": cv.ItemCount,
			"subtotal":  cv.Subtotal,
			"lastAdded": cv.LastAdded,
			"panelOpen": cv.PanelOpen,
		})
	}
	if buyNow {
		return c.Redirect("/checkout")
	}
	return c.Redirect("/cart")
}

// POST /cart/update
// Overwrites a line's quantity; zero removes the line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := h.ensureSID(c)

	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	variantID, ok := validate.OptionalID(c.FormValue("variantId"))
	if !ok {
		return c.Status(400).SendString("invalid variantId")
	}
	qty := validate.QtyOrZero(c.FormValue("qty"))

	if _, err := h.Cart.SetQuantity(c.Context(), sid, h.identity(sid), productID, qty, variantID); err != nil {
		applog.Error(c, "cart.update.fail", err, map[string]any{"product": productID})
		return c.Status(500).SendString("Could not update cart")
	}
	return c.Redirect("/cart")
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := h.ensureSID(c)

	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	variantID, ok := validate.OptionalID(c.FormValue("variantId"))
	if !ok {
		return c.Status(400).SendString("invalid variantId")
	}

	if _, err := h.Cart.Remove(c.Context(), sid, h.identity(sid), productID, variantID); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product": productID})
		return c.Status(500).SendString("Could not update cart")
	}
	return c.Redirect("/cart")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	if err := h.Cart.Clear(c.Context(), sid); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return c.Status(500).SendString("Could not clear cart")
	}
	applog.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

// GET /api/v1/cart
// Drawer state for the client-side panel.
func (h *CartHandler) State(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	cv, err := h.Cart.View(c.Context(), sid, h.identity(sid))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not load cart"})
	}
	return c.JSON(fiber.Map{
		"itemCount": cv.ItemCount,
		"subtotal":  cv.Subtotal,
		"lastAdded": cv.LastAdded,
		"panelOpen": cv.PanelOpen,
	})
}
