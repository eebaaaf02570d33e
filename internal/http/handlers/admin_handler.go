package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"vitashelf/internal/domain"
	applog "vitashelf/internal/log"
	"vitashelf/internal/repos"
	"vitashelf/internal/validate"
)

type AdminHandler struct {
	OrderRepo *repos.OrderRepo
	Prods     *repos.ProductRepo
	Cats      *repos.CategoryRepo
	Users     *repos.UserRepo
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return render(c, "admin_dashboard", fiber.Map{})
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.OrderRepo.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status := c.FormValue("status")
	if id == "" || status == "" {
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.OrderRepo.UpdateStatus(id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}

// GET /admin/products
func (h *AdminHandler) ProductsPage(c *fiber.Ctx) error {
	prods, err := h.Prods.ListAll()
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	cats, _ := h.Cats.List()
	return render(c, "admin_products", fiber.Map{"Products": prods, "Categories": cats})
}

// POST /admin/products
// Creates or updates a product.
func (h *AdminHandler) UpsertProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.FormValue("id"))
	catID, okCat := validate.ID(c.FormValue("category_id"))
	name, okName := validate.Name(c.FormValue("name"))
	price, errPrice := decimal.NewFromString(c.FormValue("price"))
	stock, errStock := strconv.Atoi(c.FormValue("stock"))
	if !okID || !okCat || !okName || errPrice != nil || price.IsNegative() || errStock != nil || stock < 0 {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(400).SendString("invalid input")
	}

	p := domain.Product{
		ID:          id,
		CategoryID:  catID,
		Name:        name,
		Brand:       c.FormValue("brand"),
		Description: c.FormValue("description"),
		Price:       price,
		PackageInfo: c.FormValue("package_info"),
		Stock:       stock,
		Active:      c.FormValue("active") != "0",
	}
	if raw := c.FormValue("original_price"); raw != "" {
		if op, err := decimal.NewFromString(raw); err == nil && !op.IsNegative() {
			p.OriginalPrice = decimal.NewNullDecimal(op)
		}
	}

	if err := h.Prods.Upsert(p); err != nil {
		applog.Error(c, "admin.products.save.fail", err, map[string]any{"product": id})
		return c.Status(400).SendString("could not save product")
	}
	applog.Audit(c, "admin.products.save", map[string]any{"product": id})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id/variants
// Creates or updates a variant.
func (h *AdminHandler) UpsertVariant(c *fiber.Ctx) error {
	productID, okP := validate.ID(c.Params("id"))
	variantID, okV := validate.ID(c.FormValue("variant_id"))
	label := c.FormValue("label")
	price, errPrice := decimal.NewFromString(c.FormValue("price"))
	if !okP || !okV || label == "" || errPrice != nil || price.IsNegative() {
		return c.Status(400).SendString("invalid input")
	}
	packQty, _ := strconv.Atoi(c.FormValue("pack_qty"))

	v := domain.ProductVariant{
		ID:        variantID,
		ProductID: productID,
		Label:     label,
		Price:     price,
		Dosage:    c.FormValue("dosage"),
		PackQty:   packQty,
		Flavor:    c.FormValue("flavor"),
	}
	if err := h.Prods.UpsertVariant(v); err != nil {
		applog.Error(c, "admin.variants.save.fail", err, map[string]any{"product": productID, "variant": variantID})
		return c.Status(400).SendString("could not save variant")
	}
	applog.Audit(c, "admin.variants.save", map[string]any{"product": productID, "variant": variantID})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id/deactivate
func (h *AdminHandler) DeactivateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Prods.Deactivate(id); err != nil {
		applog.Error(c, "admin.products.deactivate.fail", err, map[string]any{"product": id})
		return c.Status(400).SendString("could not deactivate product")
	}
	applog.Audit(c, "admin.products.deactivate", map[string]any{"product": id})
	return c.Redirect("/admin/products")
}

// UsersPage lists users (excluding admin).
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	var users []struct {
		ID    string `db:"id"`
		Email string `db:"email"`
		Name  string `db:"name"`
		Role  string `db:"role"`
	}
	if err := h.Users.DB.Select(&users, `SELECT id,email,name,role FROM users WHERE role != 'ADMIN' ORDER BY email`); err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users})
}

// DeleteUser deletes a user and related data, cancels their orders.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Users.DeleteUserCascade(id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return c.Status(400).SendString("could not delete user")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.Redirect("/admin/users")
}
