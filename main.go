package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"widget-canvas/config"
	"widget-canvas/core"
	"widget-canvas/handlers/api/canvas"
	"widget-canvas/handlers/api/commands"
	"widget-canvas/handlers/api/headerimage"
	"widget-canvas/handlers/auth"
	"widget-canvas/handlers/websocket"
	authMiddleware "widget-canvas/middleware"
	"widget-canvas/stores"
	"widget-canvas/stores/filesystem"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	switch parsed.Scheme {
	case "http", "https":
		switch parsed.Hostname() {
		case "localhost", "127.0.0.1", "::1":
			return true
		}
	case "tauri":
		return parsed.Hostname() == "localhost"
	}

	return false
}

// setupRouter builds the HTTP surface. events serves the socket.io endpoint and may be nil.
func setupRouter(store stores.Store, notifier core.Notifier, events http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"tauri://localhost"},
		AllowOriginFunc:  allowOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.AuthJWT)

		r.Handle("/metrics", promhttp.Handler())

		r.Post("/invoke/{command}", commands.HandleInvoke(store, notifier))

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/canvas", func(r chi.Router) {
				r.Get("/", canvas.HandleGetCanvas(store))
				r.Put("/", canvas.HandleSaveCanvas(store, notifier))
				r.Get("/next-position", canvas.HandleNextPosition(store))
			})
			r.Route("/header-image", func(r chi.Router) {
				r.Get("/", headerimage.HandleGet(store))
				r.Put("/", headerimage.HandleSave(store, notifier))
				r.Delete("/", headerimage.HandleDelete(store, notifier))
			})
		})

		r.Get("/auth/whoami", auth.HandleWhoAmI(authMiddleware.ClaimsFromRequest))
	})

	if events != nil {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthJWTQuery)
			r.Mount("/socket.io/", events)
		})
	}

	return r
}

func eventForFile(name string) (string, bool) {
	switch name {
	case filesystem.CanvasFileName:
		return core.EventCanvasChanged, true
	case filesystem.HeaderImageFileName:
		return core.EventHeaderImageChanged, true
	}
	return "", false
}

// changeNotifier picks how change events reach open windows. A watchable store
// reports every change itself, including edits made outside this process, so
// handlers get no notifier in that case.
func changeNotifier(ctx context.Context, store stores.Store, hub *websocket.Hub) core.Notifier {
	watcher, ok := store.(stores.Watcher)
	if !ok {
		return hub
	}

	err := watcher.Watch(ctx, func(name string) {
		if event, ok := eventForFile(name); ok {
			hub.Notify(event)
		}
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to watch data directory, falling back to request notifications")
		return hub
	}
	return nil
}

func main() {
	listenAddress := flag.String("listen", "127.0.0.1:3003", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	issueToken := flag.String("issue-token", "", "Print an API token for the given subject and exit.")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "Lifetime of tokens printed by -issue-token.")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	auth.InitAuth(cfg.APITokenSecret)
	if *issueToken != "" {
		token, err := auth.IssueToken(*issueToken, *tokenTTL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, err := stores.GetStore(ctx, cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}

	hub := websocket.NewHub()
	notifier := changeNotifier(ctx, store, hub)
	store = stores.Instrument(store, stores.NewMetrics(prometheus.DefaultRegisterer))

	r := setupRouter(store, notifier, hub.Handler())

	srv := &http.Server{
		Addr:              *listenAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logrus.WithFields(logrus.Fields{
		"addr":      *listenAddress,
		"app":       cfg.AppIdentifier,
		"storage":   cfg.Storage.Type,
		"auth":      auth.Enabled(),
		"data_path": cfg.Storage.BasePath,
	}).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("Server shutdown did not complete")
	}
	hub.Close()
	if err := stores.Close(store); err != nil {
		logrus.WithError(err).Warn("Failed to close storage")
	}
}
