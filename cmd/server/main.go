package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ruralpay/invoices/internal/cache"
	"github.com/ruralpay/invoices/internal/config"
	"github.com/ruralpay/invoices/internal/database"
	"github.com/ruralpay/invoices/internal/handlers"
	mW "github.com/ruralpay/invoices/internal/middleware"
	"github.com/ruralpay/invoices/internal/services"
)

// @title Invoice Dashboard API
// @version 1.0
// @description Invoices and customers dashboard backend
// @host localhost:8080
// @BasePath /
// @schemes http https

type viewCache interface {
	handlers.ViewCache
	services.CacheInvalidator
}

type app struct {
	cfg       *config.Config
	auth      *mW.Auth
	invoices  *handlers.InvoiceHandler
	qr        *handlers.QRHandler
	export    *handlers.ExportHandler
	customers *handlers.CustomerHandler
	login     *handlers.AuthHandler
}

func main() {
	cfg := config.Load()

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	var views viewCache
	if redisClient != nil {
		views = cache.NewRedisViewCache(redisClient, cfg.Dashboard.ViewCacheTTL)
	} else {
		log.Println("[CACHE] Redis unavailable, using in-memory view cache")
		views = cache.NewMemoryViewCache(cfg.Dashboard.ViewCacheTTL)
	}

	invoiceStore := database.NewInvoiceStore(db, cfg.Dashboard.ItemsPerPage)
	customerStore := database.NewCustomerStore(db)
	userStore := database.NewUserStore(db)

	tokens := services.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.ExpiryHours)
	provider := services.NewCredentialsProvider(userStore, tokens, cfg.Argon2)
	authService := services.NewAuthService(provider, redisClient, cfg.Dashboard.HomePath, tokens.Expiry())
	invoiceService := services.NewInvoiceService(invoiceStore, views, cfg.Dashboard.InvoicesPath)
	qrService := services.NewQRService(invoiceStore)

	a := &app{
		cfg:       cfg,
		auth:      mW.NewAuth(tokens, redisClient, cfg.Dashboard.LoginPath),
		invoices:  handlers.NewInvoiceHandler(invoiceService, invoiceStore, customerStore, views),
		qr:        handlers.NewQRHandler(qrService),
		export:    handlers.NewExportHandler(invoiceStore),
		customers: handlers.NewCustomerHandler(customerStore),
		login:     handlers.NewAuthHandler(authService, cfg.Dashboard.LoginPath, cfg.Server.SecureCookies),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Customer avatars
	r.Handle("/customers/*", http.StripPrefix("/customers/", mW.AvatarServer(a.cfg.Dashboard.AvatarDir)))

	r.Post(a.cfg.Dashboard.LoginPath, a.login.Login)
	r.Post("/logout", a.login.Logout)

	r.Group(func(r chi.Router) {
		r.Use(a.auth.Middleware)

		home, invoices := a.cfg.Dashboard.HomePath, a.cfg.Dashboard.InvoicesPath
		r.Get(home, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, invoices, http.StatusSeeOther)
		})
		r.Get(home+"/customers", a.customers.ListCustomers)

		r.Get(invoices, a.invoices.ListInvoices)
		r.Post(invoices, a.invoices.CreateInvoice)
		r.Get(invoices+"/create", a.invoices.NewInvoiceForm)
		r.Get(invoices+"/export", a.export.ExportXLSX)
		r.Get(invoices+"/{id}/edit", a.invoices.EditInvoice)
		r.Get(invoices+"/{id}/qr", a.qr.InvoiceQR)
		r.Post(invoices+"/{id}", a.invoices.UpdateInvoice)
		r.Post(invoices+"/{id}/delete", a.invoices.DeleteInvoice)
	})

	return r
}
