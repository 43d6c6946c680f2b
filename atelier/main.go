package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelier/atelier/config"
	"atelier/atelier/controllers"
	"atelier/atelier/routes"
	"atelier/atelier/services/llm"
	"atelier/atelier/sources/cache"
	"atelier/atelier/sources/psql"
	"atelier/atelier/sources/psql/dao"
	"atelier/atelier/sources/storage"
	"atelier/atelier/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	sessionDAO := dao.NewSessionDAO(db.DB)

	var sessionCache controllers.SessionCache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewSessionCache(cfg.RedisAddr, cfg.RedisCacheTTL)
		defer redisCache.Close()
		sessionCache = redisCache
	}

	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	sessionCtrl := controllers.NewSessionController(sessionDAO, sessionCache)
	exportCtrl := controllers.NewExportController(sessionDAO, minioClient)
	genCtrl := controllers.NewGenerateController(llm.NewGeminiClient(cfg))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/sessions", routes.SessionRoutes(sessionCtrl, exportCtrl, cfg))
	r.Mount("/ai/generate", routes.GenerateRoutes(genCtrl, cfg))
	r.Mount("/health", routes.HealthRoutes(controllers.NewHealthController()))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
