package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"goboard/internal/adapters"
	"goboard/internal/app"
	"goboard/internal/bootstrap"
	configDelivery "goboard/internal/delivery/configd"
	controlDelivery "goboard/internal/delivery/control"
	streamDelivery "goboard/internal/delivery/stream"
	ownMiddleware "goboard/internal/middleware"
	repo "goboard/internal/repository"
	"goboard/internal/vision"
)

type mainDeliveryHandler struct {
	stream  *streamDelivery.StreamHandler
	control *controlDelivery.ControlHandler
	config  *configDelivery.ConfigHandler
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Fatalw("failed to setup configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel, logger)

	model, err := vision.LoadModel(cfg.ModelPath)
	if err != nil {
		logger.Fatalw("failed to load classifier model", "path", cfg.ModelPath, "error", err)
	}

	profiles, err := repo.NewProfileStore(cfg.ProfileDir, logger)
	if err != nil {
		logger.Fatalw("failed to open profile store", "dir", cfg.ProfileDir, "error", err)
	}

	redisClient, mongoDB := initDatabaseAdapters(ctx, logger, cfg)
	recorder := repo.NewGameRecorder(logger, redisClient, mongoDB)

	application := app.New(logger, profiles, recorder, model)
	application.Start()
	defer application.Close()

	r := chi.NewRouter()
	handlers := &mainDeliveryHandler{
		stream:  streamDelivery.NewStreamHandler(logger, application),
		control: controlDelivery.NewControlHandler(logger, application),
		config:  configDelivery.NewConfigHandler(logger, application),
	}
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalw("failed to start server", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Get("/stream/raw", h.stream.HandleRawFrames)
	r.Get("/stream/board", h.stream.HandleBoardFrames)
	r.Get("/stream/display", h.stream.HandleDisplayFrames)
	r.Get("/stream/probabilities", h.stream.HandleProbabilities)
	r.Get("/stream/resolved", h.stream.HandleResolvedBoards)
	r.Get("/stream/events", h.stream.HandleEvents)
	r.Get("/control", h.control.HandleControl)

	r.Get("/config", h.config.HandleGetConfig)
	r.Put("/config/board", h.config.HandleSetBoard)
	r.Put("/config/display", h.config.HandleSetDisplay)
	r.Put("/config/camera", h.config.HandleSetCamera)
	r.Get("/config/reference", h.config.HandleGetReference)
	r.Post("/config/reference", h.config.HandleCaptureReference)
	r.Delete("/config/reference", h.config.HandleClearReference)

	r.Get("/profiles", h.config.HandleListProfiles)
	r.Post("/profiles/{name}/save", h.config.HandleSaveProfile)
	r.Post("/profiles/{name}/load", h.config.HandleLoadProfile)
	r.Delete("/profiles/{name}", h.config.HandleDeleteProfile)
}

// initDatabaseAdapters connects the optional record backends. The bridge
// runs standalone when neither is configured.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (*redis.Client, *mongo.Database) {
	var redisClient *redis.Client
	var mongoDB *mongo.Database

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Fatalw("failed to initialize redis", "error", err)
		}
		redisClient = redisAdapter.GetClient()
		log.Infow("redis record journal enabled", "addr", cfg.RedisUrl)
	}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Fatalw("failed to initialize mongodb", "error", err)
		}
		mongoDB = mongoAdapter.Database
		log.Infow("mongodb game archive enabled")
	}

	return redisClient, mongoDB
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("received shutdown signal")
	cancelFunc()
}
