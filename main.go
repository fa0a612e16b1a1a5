package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sohbet-lite/access"
	"sohbet-lite/chat"
	"sohbet-lite/config"
	"sohbet-lite/core"
	"sohbet-lite/credentials"
	"sohbet-lite/handlers/api"
	"sohbet-lite/handlers/lite"
	"sohbet-lite/handlers/web"
	chatMiddleware "sohbet-lite/middleware"
	"sohbet-lite/registry"
	"sohbet-lite/session"
	"sohbet-lite/stores"
	"sohbet-lite/views"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func setupRouter(cfg *config.Config, secret []byte, store stores.Store, media core.MediaStore) (*chi.Mux, error) {
	hasher, err := credentials.New(secret)
	if err != nil {
		return nil, err
	}
	renderer, err := views.New(cfg.SiteName)
	if err != nil {
		return nil, err
	}

	users := registry.NewUsers(store)
	rooms := registry.NewRooms(store, hasher, cfg.DefaultRoom)

	var guardOpts []access.Option
	if cfg.StrictRoomCookies {
		guardOpts = append(guardOpts, access.WithPossessionPolicy(access.VerifyPossession))
	}
	guard := access.NewGuard(rooms, guardOpts...)

	svc := chat.NewService(store, media, rooms,
		chat.WithGuestName(cfg.GuestName),
		chat.WithMaxUpload(cfg.MaxContentLength),
	)
	issuer := session.NewIssuer(cfg.PublicBaseURL)

	modern := &web.Handlers{
		Users:   users,
		Rooms:   rooms,
		Guard:   guard,
		Chat:    svc,
		Issuer:  issuer,
		Views:   renderer,
		Guest:   cfg.GuestName,
		Window:  cfg.ModernWindow,
		Refresh: cfg.ModernRefresh,
	}
	mobile := &lite.Handlers{
		Users:   users,
		Rooms:   rooms,
		Guard:   guard,
		Chat:    svc,
		Issuer:  issuer,
		Views:   renderer,
		Window:  cfg.LiteWindow,
		Refresh: cfg.LiteRefresh,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(chatMiddleware.EscapedRoutePath)
	r.Use(chatMiddleware.Identify(users))

	r.Get("/health", api.HandleHealth())

	r.Get("/", modern.HandleHome())
	r.Post("/register", modern.HandleRegister())
	r.Get("/share/{room}", modern.HandleShare())
	r.Post("/enter/{room}", modern.HandleEnter())
	r.Get("/room/{room}", modern.HandleRoom())
	r.Post("/send", modern.HandleSend())
	r.Post("/upload", modern.HandleUpload())
	r.Get("/media/{handle}", modern.HandleMedia())

	r.Get("/lite", mobile.HandleLite())
	r.Post("/lite", mobile.HandleLite())

	allowedOrigins := []string{"http://localhost:*", "http://127.0.0.1:*"}
	if cfg.CORSAllowedOrigin != "" {
		allowedOrigins = []string{cfg.CORSAllowedOrigin}
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", api.RoomPasswordHeader},
			AllowCredentials: true,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		}))
		r.Get("/rooms", api.HandleListRooms(rooms))
		r.Get("/rooms/{room}/messages", api.HandleMessages(rooms, guard, svc, cfg.ModernWindow))
	})

	return r, nil
}

func waitForShutdown(srv *http.Server, store stores.Store) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	<-ctx.Done()

	logrus.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("Server did not shut down cleanly")
	}
	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close store")
		}
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	listenAddress := flag.String("listen", cfg.ListenAddr, "The address to listen on.")
	logLevel := flag.String("loglevel", cfg.LogLevel, "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	secret, err := cfg.Secret()
	if err != nil {
		logrus.Fatalf("Failed to create secret: %v", err)
	}

	store := stores.GetStore(cfg)
	media := stores.GetMediaStore(cfg, store)

	r, err := setupRouter(cfg, secret, store, media)
	if err != nil {
		logrus.Fatalf("Failed to set up router: %v", err)
	}

	srv := &http.Server{
		Addr:              *listenAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, store)
}
