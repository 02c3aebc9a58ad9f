package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/config"
	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/address"
	"fitness-directory/backend/internal/domain/contact"
	"fitness-directory/backend/internal/domain/event"
	"fitness-directory/backend/internal/domain/gallery"
	"fitness-directory/backend/internal/domain/plan"
	"fitness-directory/backend/internal/domain/profile"
	"fitness-directory/backend/internal/domain/reaper"
	"fitness-directory/backend/internal/firebase"
	apihttp "fitness-directory/backend/internal/http"
	"fitness-directory/backend/internal/logger"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = log.Sync() }()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatal("firebase init failed", zap.Error(err))
	}
	defer clients.Close()

	var db docstore.Store
	switch cfg.StoreBackend {
	case "memory":
		log.Warn("using the in-memory store, data is lost on exit")
		db = docstore.NewMemory()
	case "firestore":
		db = docstore.NewFirestore(clients.Firestore)
	default:
		log.Fatal("unknown STORE_BACKEND", zap.String("backend", cfg.StoreBackend))
	}

	// Stores and services
	dir := address.NewDirectory(db, cfg.DirectoryPreconditions, log.Named("addresses"))
	contacts := contact.NewStore(db, log.Named("contacts"))
	plans := plan.NewStore(db, log.Named("plans"))
	events := event.NewCoordinator(db, dir, contacts, log.Named("events"))
	owners := profile.NewService(db, dir, contacts, plans, events, log.Named("owners"))

	// unused addresses are swept after every event edit
	events.SetSweeper(reaper.New(owners, dir, log.Named("reaper")))

	var gallerySvc *gallery.Service
	if clients.IAM != nil {
		gallerySvc = gallery.NewService(
			cfg.StorageBucket,
			cfg.SignedURLServiceAccountEmail,
			gallery.IAMSigner(clients.IAM, cfg.SignedURLServiceAccountEmail),
			log.Named("gallery"),
		)
	} else {
		log.Info("SIGNED_URL_SERVICE_ACCOUNT_EMAIL not set, gallery uploads disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:       cfg,
		Log:       log.Named("http"),
		Auth:      clients.Auth,
		Owners:    owners,
		Addresses: dir,
		Events:    events,
		Contacts:  contacts,
		Plans:     plans,
		Gallery:   gallerySvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Info("API listening",
			zap.String("port", cfg.Port),
			zap.String("project", cfg.ProjectID),
			zap.String("store", cfg.StoreBackend),
			zap.Bool("directoryPreconditions", cfg.DirectoryPreconditions),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down")
	_ = srv.Shutdown(ctxShutdown)
}
