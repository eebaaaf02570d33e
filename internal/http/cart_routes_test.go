package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"vitashelf/internal/config"
	"vitashelf/internal/http/handlers"
	"vitashelf/internal/repos"
	"vitashelf/internal/services"
)

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func newCartApp(t *testing.T) (*fiber.App, *repos.UserRepo, *services.CartSessionService) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", CartStore: "sqlite"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, cfg, authSvc)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/update", deps.CartHandler.Update)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)
	api := app.Group("/api/v1")
	api.Get("/cart", deps.CartHandler.State)

	return app, userRepo, deps.CartHandler.Cart
}

func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func postForm(t *testing.T, app *fiber.App, path, sid, tok string, form url.Values) *http.Response {
	t.Helper()
	form.Set("csrf", tok)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCartAddMergeAndUpdateRoutes(t *testing.T) {
	app, _, cartSvc := newCartApp(t)
	tok := csrfToken(t, app)
	sid := "sess-cart-1"

	// add twice: same product+variant merges into one line
	for i := 0; i < 2; i++ {
		resp := postForm(t, app, "/cart", sid, tok, url.Values{
			"productId": {"omega3-120"}, "variantId": {"caps-240"}, "qty": {"1"},
		})
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("add %d: expected redirect, got %d", i, resp.StatusCode)
		}
	}
	cv, err := cartSvc.View(context.Background(), sid, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 2 {
		t.Fatalf("expected one merged line qty 2, got %+v", cv.Lines)
	}
	if cv.Subtotal.String() != "69.8" && cv.Subtotal.String() != "69.80" {
		t.Fatalf("expected variant-priced subtotal 69.80, got %s", cv.Subtotal)
	}

	// set-to semantics via /cart/update
	resp := postForm(t, app, "/cart/update", sid, tok, url.Values{
		"productId": {"omega3-120"}, "variantId": {"caps-240"}, "qty": {"5"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("update: expected redirect, got %d", resp.StatusCode)
	}
	cv, _ = cartSvc.View(context.Background(), sid, "")
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 5 {
		t.Fatalf("update must overwrite, got %+v", cv.Lines)
	}

	// qty 0 removes
	postForm(t, app, "/cart/update", sid, tok, url.Values{
		"productId": {"omega3-120"}, "variantId": {"caps-240"}, "qty": {"0"},
	})
	cv, _ = cartSvc.View(context.Background(), sid, "")
	if len(cv.Lines) != 0 {
		t.Fatalf("qty 0 must remove line, got %+v", cv.Lines)
	}
}

func TestCartAddUnknownProductRejected(t *testing.T) {
	app, _, _ := newCartApp(t)
	tok := csrfToken(t, app)

	resp := postForm(t, app, "/cart", "sess-cart-2", tok, url.Values{
		"productId": {"does-not-exist"}, "qty": {"1"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", resp.StatusCode)
	}

	resp = postForm(t, app, "/cart", "sess-cart-2", tok, url.Values{"qty": {"1"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing productId, got %d", resp.StatusCode)
	}
}

// A login that changes the effective identity resets the session cart; the
// first association keeps it.
func TestCartIdentitySwitchAcrossLogin(t *testing.T) {
	app, userRepo, cartSvc := newCartApp(t)
	tok := csrfToken(t, app)
	sid := "sess-cart-3"
	ctx := context.Background()

	// guest adds a product
	postForm(t, app, "/cart", sid, tok, url.Values{"productId": {"mag-400"}, "qty": {"2"}})

	// first association (alice logs in): cart is preserved
	if err := userRepo.BindSession(sid, "u-alice"); err != nil {
		t.Fatal(err)
	}
	cv, err := cartSvc.View(ctx, sid, "u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Identity != "u-alice" {
		t.Fatalf("first association must keep lines: %+v identity=%q", cv.Lines, cv.Identity)
	}

	// bob takes over the browser session: cart resets
	if err := userRepo.BindSession(sid, "u-bob"); err != nil {
		t.Fatal(err)
	}
	cv, err = cartSvc.View(ctx, sid, "u-bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 0 || cv.Identity != "u-bob" {
		t.Fatalf("identity switch must clear lines: %+v identity=%q", cv.Lines, cv.Identity)
	}

	// and the reset survives a reload (persisted snapshot was overwritten)
	cv, _ = cartSvc.View(ctx, sid, "u-bob")
	if len(cv.Lines) != 0 {
		t.Fatalf("re-sync with same identity must not resurrect lines: %+v", cv.Lines)
	}
}

func TestCartStateEndpoint(t *testing.T) {
	app, _, _ := newCartApp(t)
	tok := csrfToken(t, app)
	sid := "sess-cart-4"

	postForm(t, app, "/cart", sid, tok, url.Values{"productId": {"zinc-50"}, "qty": {"3"}})

	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON, got %s", ct)
	}
}
