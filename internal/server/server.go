package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lungsight/apiserver/config"
	"github.com/lungsight/apiserver/internal/db"
	"github.com/lungsight/apiserver/internal/dispatch"
	"github.com/lungsight/apiserver/internal/handlers"
	"github.com/lungsight/apiserver/internal/logger"
	"github.com/lungsight/apiserver/internal/mq"
	"github.com/lungsight/apiserver/internal/record"
	"github.com/lungsight/apiserver/internal/search"
	"github.com/lungsight/apiserver/internal/services"
	"github.com/lungsight/apiserver/internal/session"
	"github.com/lungsight/apiserver/internal/storage"
	"github.com/lungsight/apiserver/internal/store"
	"github.com/lungsight/apiserver/internal/vision"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
	log        *logger.Logger
}

// New constructs a Server with all capability components wired per config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	artifactRepo := store.NewArtifactRepository(dbConn)
	auditLog := record.NewAuditLog(cfg.Recorder.AuditCSVPath)
	recorder := record.NewRecorder(cfg.Recorder.InferenceCSVPath)
	sessions := session.NewStore()
	classifier := vision.NewClassifier(cfg.Model)

	objectStore, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure artifact bucket: %w", err)
	}

	events, err := newEventBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var searchService *search.Service
	if cfg.Search.APIKey != "" {
		searchService, err = search.NewService(ctx, cfg.Search)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	var dispatcher dispatch.Dispatcher
	if cfg.Dispatcher.URL != "" {
		dispatcher, err = dispatch.NewHTTPDispatcher(cfg.Dispatcher.URL)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	userService := services.NewUserService(userRepo, auditLog, log)
	cxrService := services.NewCXRService(classifier, recorder, events, cfg.MQ.Channel, log)
	reportService := services.NewReportService(objectStore, artifactRepo, log)

	authHandler := handlers.NewAuthHandler(userService, sessions, jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/v1", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
		handlers.CXRRouter(r, handlers.NewCXRHandler(cxrService, authHandler))
		handlers.ReportRouter(r, handlers.NewReportHandler(reportService, authHandler))
		handlers.SearchRouter(r, handlers.NewSearchHandler(searchService, authHandler))
		handlers.ChatRouter(r, handlers.NewChatHandler(dispatcher, authHandler))
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
		log:        log,
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "", "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func newEventBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "", "none":
		return nil, nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unsupported mq backend %q", cfg.MQ.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.log != nil {
		s.log.Sync()
	}
	return s.httpServer.Close()
}
