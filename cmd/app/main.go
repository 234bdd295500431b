package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"shorturl-go/internal/dto"
	"shorturl-go/internal/handler"
	"shorturl-go/internal/i18n"
	"shorturl-go/internal/limiter"
	"shorturl-go/internal/middleware"
	"shorturl-go/internal/repository"
	"shorturl-go/internal/service"
	"shorturl-go/pkg/logging"
)

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
}

func startServer(r *gin.Engine) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("Server exiting")
}

func main() {
	initConfig()
	logging.InitLoggerFromConfig()
	logging.Logger.Info("Application started")

	repository.InitDB(logging.Logger, logging.AtomicLevel)
	repository.InitRedis()

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		panic(err)
	}

	// 注册自定义 binding 校验
	dto.RegisterValidations()

	linkRepo := repository.NewLinkRepository(repository.DB)
	linkService := service.NewLinkService(
		linkRepo,
		repository.RedisPool,
		viper.GetInt("shortlink.code_length"),
		viper.GetBool("whitelist.enforce"),
	)
	redirectService := service.NewRedirectService(linkRepo, repository.RedisPool)
	shortLinkHandler := handler.NewShortLinkHandler(linkService, redirectService)

	// 创建接口的固定窗口限流器（默认 5 次 / 60 秒）
	createLimiter := limiter.New(
		viper.GetInt("ratelimit.max_requests"),
		time.Duration(viper.GetInt("ratelimit.window_seconds"))*time.Second,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logging.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(bundle))

	api := r.Group("/api")
	{
		api.POST("/shortlink", middleware.RateLimitMiddleware(createLimiter), shortLinkHandler.Create)
		api.GET("/shortlink", shortLinkHandler.List)
		api.GET("/shortlink/:code", shortLinkHandler.Retrieve)
		api.GET("/shortlink/:code/stats", shortLinkHandler.Stats)
		api.PUT("/shortlink/:code", shortLinkHandler.Update)
		api.DELETE("/shortlink/:code", shortLinkHandler.Delete)
		api.GET("/resolve/:code", shortLinkHandler.Resolve)
		api.GET("/stats", shortLinkHandler.AggregateStats)

		api.POST("/whitelist", handler.CreateWhitelistDomainHandler)
		api.GET("/whitelist", handler.ListWhitelistDomainsHandler)
		api.DELETE("/whitelist/:id", handler.DeleteWhitelistDomainHandler)
	}

	// 根路径 GET 统一走重定向（避免与 /api 冲突）
	r.Use(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		shortLinkHandler.RedirectToTarget(c)
	})

	// 定时清理限流器里过期的窗口条目，保证状态不会无限增长
	c := cron.New()
	_, addErr := c.AddFunc("*/10 * * * *", func() {
		removed := createLimiter.Sweep()
		logging.Logger.Info("Rate limiter sweep finished",
			zap.Int("removed", removed),
			zap.Int("remaining", createLimiter.Size()))
	})
	if addErr != nil {
		logging.Logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}
	c.Start()

	startServer(r)
}
