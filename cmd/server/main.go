package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/config"
	"github.com/SHILUNKA/edusaas-sub001/internal/api/handler"
	"github.com/SHILUNKA/edusaas-sub001/internal/api/router"
	appcron "github.com/SHILUNKA/edusaas-sub001/internal/cron"
	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/internal/repository"
	"github.com/SHILUNKA/edusaas-sub001/internal/service"
	"github.com/SHILUNKA/edusaas-sub001/pkg/database"
	"github.com/SHILUNKA/edusaas-sub001/pkg/jwt"
	applogger "github.com/SHILUNKA/edusaas-sub001/pkg/logger"
	"github.com/SHILUNKA/edusaas-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库（内部完成流水表迁移）
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 4. 连接 Redis
	// 上游会话与点名锁都依赖 Redis，连不上直接拒绝启动
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器与上游网关
	jwtMgr := jwt.NewManager(&cfg.Auth)
	gw := gateway.NewGateway(&cfg.Upstream, logger)

	// 6. 依赖注入: Gateway/Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, gw, repo, jwtMgr, rdb, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}
	h := handler.NewHandler(svc)

	// 7. 启动流水清理定时任务
	sched := appcron.NewScheduler(&cfg.Journal, repo.Submission, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("启动定时任务失败", zap.Error(err))
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	sched.Stop()

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}
	rdb.Close()

	logger.Info("服务器已关闭")
}
