package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Greybash/ngo-service/internal/cache"
	"github.com/Greybash/ngo-service/internal/gateway"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/middleware"
	"github.com/Greybash/ngo-service/internal/notify"
	"github.com/Greybash/ngo-service/internal/repository"
	"github.com/Greybash/ngo-service/internal/router"
	"github.com/Greybash/ngo-service/internal/scheduler"
	"github.com/Greybash/ngo-service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Razorpay.KeySecret == "" {
		logger.Warn("Razorpay key secret is empty, payment callbacks will fail verification")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set")
	}

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	mailer := notify.NewMailer(cfg.Mail)
	notifier, err := notify.New(cfg, mailer)
	if err != nil {
		return fmt.Errorf("初始化通知失败: %w", err)
	}
	defer notifier.Close()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("初始化存储失败: %w", err)
	}

	donations := logic.NewDonationLogic(db, gateway.NewRazorpayGateway(cfg.Razorpay), cache.New(cfg.Redis), notifier, cfg.Razorpay.Currency)
	jobs := logic.NewJobLogic(db, store, notifier, cfg.Server.BaseURL)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	done := make(chan struct{})
	defer close(done)
	limiter.StartCleanup(done, time.Minute)

	r := router.Setup(cfg, &router.Services{
		Accounts:   logic.NewAccountLogic(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Donations:  donations,
		Volunteers: logic.NewVolunteerLogic(db),
		Jobs:       jobs,
		Dashboard:  logic.NewDashboardLogic(db, donations),
		Limiter:    limiter,
	})

	// 启动定时任务
	manager, err := scheduler.Start(db, jobs, cfg)
	if err != nil {
		return fmt.Errorf("启动定时任务失败: %w", err)
	}
	defer manager.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case sig := <-quit:
		logger.Info("Received %s, shutting down server...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭失败: %w", err)
	}
	logger.Info("Server exited")
	return nil
}
