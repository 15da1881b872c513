//	@title			Pi Tetris API
//	@version		1.0
//	@description	Content backend for the Pi Tetris consultancy site: public content endpoints, admin CRUD, media upload/serve.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/pitetris/backend/internal/auth"
	"github.com/pitetris/backend/internal/config"
	"github.com/pitetris/backend/internal/contact"
	"github.com/pitetris/backend/internal/content"
	"github.com/pitetris/backend/internal/db"
	appMiddleware "github.com/pitetris/backend/internal/middleware"
	"github.com/pitetris/backend/internal/media"
	"github.com/pitetris/backend/internal/objectacl"
	"github.com/pitetris/backend/internal/objectstore"
	"github.com/pitetris/backend/internal/obs"
	"github.com/pitetris/backend/internal/session"
	"github.com/pitetris/backend/internal/user"

	_ "github.com/pitetris/backend/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := objectstore.New(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageUseSSL,
		cfg.PrivateObjectDir,
		cfg.PublicObjectSearchPaths,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)

	sessions := session.NewManager(session.NewPGStore(pool), cfg.SessionTTL, cfg.IsProduction())

	aclManager := objectacl.NewManager(store, nil)
	mediaHandler := media.NewHandler(store, aclManager)

	contentHandler := content.NewHandler(content.NewRepository(pool))
	contactHandler := contact.NewHandler(contact.NewService(contact.NewRepository(pool)))
	authHandler := auth.NewHandler(sessions)

	strategy := buildAuthStrategy(cfg, sessions, userSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(obs.Metrics)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Ops endpoints
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", obs.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Login/callback routes of the selected strategy
	strategy.Setup(r)

	// Logout is deliberately ungated: clearing an absent session is a success.
	r.Post("/api/auth/logout", authHandler.Logout)

	// Public content
	r.Get("/api/services", contentHandler.ListServices)
	r.Get("/api/services/{id}", contentHandler.GetService)
	r.Get("/api/case-studies", contentHandler.ListCaseStudies)
	r.Get("/api/case-studies/{id}", contentHandler.GetCaseStudy)
	r.Get("/api/testimonials", contentHandler.ListTestimonials)
	r.Get("/api/team", contentHandler.ListTeamMembers)
	r.Get("/api/clients", contentHandler.ListClients)
	r.Get("/api/technologies", contentHandler.ListTechnologies)
	r.Get("/api/categories", contentHandler.ListCategories)
	r.Post("/api/contact", contactHandler.Submit)

	// Public assets: no auth, absence is a plain 404.
	r.Get("/public-objects/*", mediaHandler.ServePublicObject)

	// Authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(strategy.IsAuthenticated)
		r.Get("/api/auth/user", authHandler.CurrentUser)
		r.Get("/objects/*", mediaHandler.ServeObject)
	})

	// Admin surface
	r.Group(func(r chi.Router) {
		r.Use(strategy.IsAuthenticated)
		r.Use(auth.RequireAdmin(userSvc))

		r.Post("/api/objects/upload", mediaHandler.UploadURL)
		r.Put("/api/admin/images", mediaHandler.FinalizeImage)

		r.Get("/api/admin/services", contentHandler.AdminListServices)
		r.Post("/api/admin/services", contentHandler.CreateService)
		r.Put("/api/admin/services/{id}", contentHandler.UpdateService)
		r.Delete("/api/admin/services/{id}", contentHandler.DeleteService)

		r.Get("/api/admin/case-studies", contentHandler.AdminListCaseStudies)
		r.Post("/api/admin/case-studies", contentHandler.CreateCaseStudy)
		r.Put("/api/admin/case-studies/{id}", contentHandler.UpdateCaseStudy)
		r.Delete("/api/admin/case-studies/{id}", contentHandler.DeleteCaseStudy)

		r.Get("/api/admin/testimonials", contentHandler.AdminListTestimonials)
		r.Post("/api/admin/testimonials", contentHandler.CreateTestimonial)
		r.Put("/api/admin/testimonials/{id}", contentHandler.UpdateTestimonial)
		r.Delete("/api/admin/testimonials/{id}", contentHandler.DeleteTestimonial)

		r.Get("/api/admin/team", contentHandler.AdminListTeamMembers)
		r.Post("/api/admin/team", contentHandler.CreateTeamMember)
		r.Put("/api/admin/team/{id}", contentHandler.UpdateTeamMember)
		r.Delete("/api/admin/team/{id}", contentHandler.DeleteTeamMember)

		r.Get("/api/admin/clients", contentHandler.AdminListClients)
		r.Post("/api/admin/clients", contentHandler.CreateClient)
		r.Put("/api/admin/clients/{id}", contentHandler.UpdateClient)
		r.Delete("/api/admin/clients/{id}", contentHandler.DeleteClient)

		r.Get("/api/admin/technologies", contentHandler.AdminListTechnologies)
		r.Post("/api/admin/technologies", contentHandler.CreateTechnology)
		r.Put("/api/admin/technologies/{id}", contentHandler.UpdateTechnology)
		r.Delete("/api/admin/technologies/{id}", contentHandler.DeleteTechnology)

		r.Get("/api/admin/categories", contentHandler.AdminListCategories)
		r.Post("/api/admin/categories", contentHandler.CreateCategory)
		r.Put("/api/admin/categories/{id}", contentHandler.UpdateCategory)
		r.Delete("/api/admin/categories/{id}", contentHandler.DeleteCategory)

		r.Get("/api/admin/contact-submissions", contactHandler.AdminList)
		r.Put("/api/admin/contact-submissions/{id}/read", contactHandler.AdminMarkRead)
		r.Delete("/api/admin/contact-submissions/{id}", contactHandler.AdminDelete)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, auth=%s)", cfg.Port, cfg.AppEnv, cfg.AuthStrategy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

// buildAuthStrategy selects the auth strategy once at bootstrap; the rest of
// the application only ever sees the Strategy interface.
func buildAuthStrategy(cfg *config.Config, sessions *session.Manager, userSvc *user.Service) auth.Strategy {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.AuthStrategy {
	case "oidc":
		s, err := auth.NewOIDCStrategy(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL, sessions, userSvc)
		if err != nil {
			log.Fatalf("oidc strategy init failed: %v", err)
		}
		return s
	case "direct":
		if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
			if _, err := userSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
				log.Fatalf("admin seed failed: %v", err)
			}
			log.Printf("seeded admin account %s", cfg.AdminEmail)
		}
		return auth.NewDirectStrategy(sessions, userSvc)
	default:
		log.Fatalf("unknown AUTH_STRATEGY %q (want direct or oidc)", cfg.AuthStrategy)
		return nil
	}
}
