package config

import (
	"log"
	"os"
)

type Config struct {
	Port      string
	DBDSN     string
	MediaDir  string
	LogFile   string
	CartStore string // sqlite | redis
	RedisAddr string

	// checkout policy constants layered on the cart subtotal
	FreeShippingOver string
	ShippingFee      string
	VATRate          string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func Load() Config {
	cfg := Config{
		Port:             getenv("PORT", "8080"),
		DBDSN:            getenv("DB_DSN", "vitashelf.db"), // sqlite file in project root
		MediaDir:         getenv("MEDIA_DIR", "./web/media"),
		LogFile:          getenv("LOG_FILE", "./vitashelf.log"),
		CartStore:        getenv("CART_STORE", "sqlite"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		FreeShippingOver: getenv("FREE_SHIPPING_OVER", "49.00"),
		ShippingFee:      getenv("SHIPPING_FEE", "4.95"),
		VATRate:          getenv("VAT_RATE", "0.19"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CART_STORE=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.CartStore, cfg.LogFile)
	return cfg
}
