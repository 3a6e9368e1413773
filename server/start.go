package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-directory/auth"
	cachepackage "cafe-directory/cache"
	"cafe-directory/config"
	"cafe-directory/database"
	"cafe-directory/directory"
	"cafe-directory/handlers"
	"cafe-directory/notify"
	"cafe-directory/repository"
	"cafe-directory/session"
	"cafe-directory/views"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// Dependencies are the services the routes are served from.
type Dependencies struct {
	Auth     *auth.Service
	Cafes    *directory.Service
	Sessions *session.Manager
	Views    *views.Renderer
	Sender   notify.NotificationSender
}

// route describes one registered endpoint.
type route struct {
	Name    string
	Methods []string
	Path    string
	Handler http.HandlerFunc
}

var (
	readOnly = []string{http.MethodGet}
	formPage = []string{http.MethodGet, http.MethodPost}
)

// NewRouter wires every route and the middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Sessions, deps.Views)
	cafeHandler := handlers.NewCafeHandler(deps.Cafes, deps.Sessions, deps.Views)
	pageHandler := handlers.NewPageHandler(deps.Sender, deps.Sessions, deps.Views)

	routes := []route{
		{Name: "HealthCheck", Methods: readOnly, Path: "/health", Handler: healthCheck},
		{Name: "Register", Methods: formPage, Path: "/register", Handler: authHandler.Register},
		{Name: "Login", Methods: formPage, Path: "/login", Handler: authHandler.Login},
		{Name: "Logout", Methods: readOnly, Path: "/logout", Handler: authHandler.Logout},
		{Name: "DeleteCafe", Methods: readOnly, Path: "/delete/{id:[0-9]+}", Handler: cafeHandler.Delete},
		{Name: "Home", Methods: formPage, Path: "/", Handler: cafeHandler.Home},
		{Name: "ShowCafe", Methods: readOnly, Path: "/cafe/{id:[0-9]+}", Handler: cafeHandler.Show},
		{Name: "NewCafe", Methods: formPage, Path: "/new-cafe", Handler: cafeHandler.New},
		{Name: "EditCafe", Methods: formPage, Path: "/edit-cafe/{id:[0-9]+}", Handler: cafeHandler.Edit},
		{Name: "SearchLocations", Methods: formPage, Path: "/search", Handler: cafeHandler.Locations},
		{Name: "SearchByLocation", Methods: formPage, Path: "/search/{location}", Handler: cafeHandler.Search},
		{Name: "AboutUs", Methods: formPage, Path: "/about_us", Handler: pageHandler.About},
		{Name: "Contact", Methods: formPage, Path: "/contact", Handler: pageHandler.Contact},
	}

	router := mux.NewRouter().UseEncodedPath()
	for _, rt := range routes {
		router.HandleFunc(rt.Path, rt.Handler).Methods(rt.Methods...).Name(rt.Name)
	}
	router.NotFoundHandler = http.HandlerFunc(cafeHandler.NotFound)

	// mux middleware only runs for matched routes, so panics and client
	// addresses are handled around the whole router.
	router.Use(handlers.RequestLogger, handlers.LoadUser(deps.Auth, deps.Sessions))
	return middleware.RealIP(middleware.Recoverer(router))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "cafe-directory"}`))
}

// StartServer serves the application until SIGINT or SIGTERM.
func StartServer(cfg *config.Config) error {
	logger.Info("Starting Cafe Directory...")

	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	listCache, err := cachepackage.InitializeCache(cfg)
	if err != nil {
		return err
	}
	if listCache != nil {
		defer listCache.Close()
	}

	sessions, err := session.NewManager(cfg.SecretKey, cfg.SessionSecure)
	if err != nil {
		return err
	}
	renderer, err := views.New()
	if err != nil {
		return err
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers)
	deps := Dependencies{
		Auth:     auth.NewService(repository.NewUserRepository(dbConn), hasher),
		Cafes:    directory.NewService(repository.NewCafeRepository(dbConn), listCache),
		Sessions: sessions,
		Views:    renderer,
		Sender:   notify.NewSender(cfg),
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Cafe Directory started", zap.String("addr", srv.Addr))
		logger.Info("Health check: GET /health")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down Cafe Directory")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Cafe Directory stopped")
	return nil
}
