package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/retailcore/storefront/docs"
	"github.com/retailcore/storefront/internal/admin"
	"github.com/retailcore/storefront/internal/cart"
	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/config"
	"github.com/retailcore/storefront/internal/database"
	"github.com/retailcore/storefront/internal/httpx"
	"github.com/retailcore/storefront/internal/order"
)

// @title Storefront API
// @version 1.0
// @description Catálogo, carrito por sesión, checkout y administración de órdenes.
// @BasePath /
// @securityDefinitions.basic BasicAuth
func main() {
	cfg := config.Load()

	db, err := database.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[storefront] connect postgres: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("[storefront] migrate: %v", err)
	}

	catalogRepo := catalog.NewPGRepo(db.Pool())
	orderRepo := order.NewPGRepo(db.Pool())
	adminRepo := admin.NewPGRepo(db.Pool())

	var store cart.Store
	if cfg.RedisURL != "" {
		rs, err := cart.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("[storefront] connect redis: %v", err)
		}
		defer rs.Close()
		store = rs
		log.Printf("[storefront] carts stored in redis")
	} else {
		store = cart.NewMemStore()
		log.Printf("[storefront] carts stored in memory; set REDIS_URL to survive restarts")
	}

	carts := cart.NewService(store, catalogRepo)
	reconciler := order.NewReconciler(carts, orderRepo)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := admin.EnsureAccount(bootCtx, adminRepo, cfg.AdminUser, cfg.AdminPassword); err != nil {
		log.Printf("[storefront] warning: ensure admin account: %v", err)
	}
	cancelBoot()

	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), gin.Recovery())

	r.GET("/healthz", healthzHandler(db))
	r.GET("/featured", featuredHandler(catalogRepo))
	r.GET("/products", listProductsHandler(catalogRepo))
	r.GET("/products/:id", getProductHandler(catalogRepo))
	r.GET("/categories", listCategoriesHandler(catalogRepo))
	r.GET("/categories/:id", getCategoryHandler(catalogRepo))
	r.GET("/orders/:id", getOrderHandler(orderRepo))

	sess := r.Group("/", httpx.Session())
	sess.GET("/cart", getCartHandler(carts))
	sess.GET("/cart/count", cartCountHandler(carts))
	sess.POST("/cart/items", addCartItemHandler(carts))
	sess.PUT("/cart/items/:product_id", updateCartItemHandler(carts))
	sess.DELETE("/cart/items/:product_id", removeCartItemHandler(carts))
	sess.DELETE("/cart", clearCartHandler(carts))
	sess.POST("/checkout", checkoutHandler(reconciler))

	adm := r.Group("/admin", admin.BasicAuth(adminRepo))
	adm.GET("/orders", listOrdersHandler(orderRepo))
	adm.GET("/orders/:id", getOrderHandler(orderRepo))
	adm.PUT("/orders/:id/status", updateOrderStatusHandler(orderRepo))
	adm.GET("/products", adminListProductsHandler(catalogRepo))
	adm.POST("/products", createProductHandler(catalogRepo))
	adm.PUT("/products/:id", updateProductHandler(catalogRepo))
	adm.PUT("/products/:id/active", setProductActiveHandler(catalogRepo))
	adm.DELETE("/products/:id", deleteProductHandler(catalogRepo))
	adm.POST("/categories", createCategoryHandler(catalogRepo))
	adm.PUT("/categories/:id", updateCategoryHandler(catalogRepo))
	adm.DELETE("/categories/:id", deleteCategoryHandler(catalogRepo))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[storefront] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[storefront] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[storefront] shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("[storefront] forced shutdown: %v", err)
	}
	log.Println("[storefront] server exited")
}
