package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"PriceRadar/pkg/config"
)

// Server API服务器
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

// NewServer 创建新的API服务器
func NewServer(cfg *config.Config) *Server {
	router := gin.New()

	// 设置中间件
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	readTimeout := cfg.API.ReadTimeout.Std()
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := cfg.API.WriteTimeout.Std()
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         ":" + cfg.API.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return &Server{
		router: router,
		srv:    srv,
	}
}

// SetupRoutes 设置路由
func (s *Server) SetupRoutes(handlers *Handlers) {
	// 健康检查
	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/ready", handlers.ReadinessCheck)

	// API v1 路由组
	v1 := s.router.Group("/api/v1")
	{
		// 价格接口
		v1.GET("/prices", handlers.GetCurrentPrices)
		v1.GET("/prices/:symbol", handlers.GetCurrentPrice)
		v1.GET("/prices/:symbol/history", handlers.GetPriceHistory)

		// 告警接口
		v1.POST("/alerts", handlers.CreateAlert)
		v1.GET("/alerts/user/:userId", handlers.GetUserAlerts)
		v1.DELETE("/alerts/:alertId/user/:userId", handlers.DeleteAlert)
	}
}

// Start 启动服务器，非阻塞
func (s *Server) Start() {
	go func() {
		log.Printf("API服务器启动在 %s\n", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v\n", err)
		}
	}()
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("正在关闭API服务器...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}
	log.Println("API服务器已关闭")
	return nil
}
