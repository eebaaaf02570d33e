package handlers

import (
	"vitashelf/internal/cart"
	"vitashelf/internal/config"
	"vitashelf/internal/repos"
	"vitashelf/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	FavoriteHandler *FavoriteHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	favRepo := repos.NewFavoriteRepo(db)

	var store cart.Store = repos.NewCartStore(db)
	if cfg.CartStore == "redis" {
		store = repos.NewRedisCartStore(cfg.RedisAddr)
	}
	policy := services.PolicyFromStrings(cfg.FreeShippingOver, cfg.ShippingFee, cfg.VATRate)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartSessionService(store, prodRepo, policy)
	checkoutSvc := services.NewCheckoutService(cartSvc, orderRepo)
	favSvc := services.NewFavoriteService(favRepo)

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, Auth: auth},
		OrderHandler:    &OrderHandler{Cart: cartSvc, Checkout: checkoutSvc, Repo: orderRepo, Auth: auth},
		FavoriteHandler: &FavoriteHandler{Favs: favSvc},
		AdminHandler:    &AdminHandler{OrderRepo: orderRepo, Prods: prodRepo, Cats: catRepo, Users: repos.NewUserRepo(db)},
	}
}
