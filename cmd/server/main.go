package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"PriceRadar/pkg/api"
	"PriceRadar/pkg/cache"
	"PriceRadar/pkg/config"
	"PriceRadar/pkg/database"
	"PriceRadar/pkg/messaging"
	"PriceRadar/pkg/monitor"
	"PriceRadar/pkg/notifier"
	"PriceRadar/pkg/scheduler"
	"PriceRadar/pkg/service"
	"PriceRadar/pkg/simulator"
)

func main() {
	log.Println("启动价格监控服务...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	// 连接数据库
	db, err := database.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("连接数据库失败: %v\n", err)
	}
	defer db.Close()

	// 连接Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	priceCache := cache.NewPriceCache(redisClient)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := priceCache.Ping(ctx); err != nil {
			// 缓存只是加速层，不可用时服务照常启动
			log.Printf("警告: Redis连接失败，缓存暂不可用: %v\n", err)
		}
		cancel()
	}

	// 连接NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("连接NATS失败: %v\n", err)
	}
	defer natsClient.Close()

	// 消费告警流记录投递日志
	if err := natsClient.Subscribe("ALERTS_STREAM", "alert-audit", "alerts.>", notifier.AlertAuditHandler()); err != nil {
		log.Printf("警告: 订阅告警流失败，投递审计不可用: %v\n", err)
	}

	// 构建基准价格表
	basePrices := make(map[string]decimal.Decimal, len(cfg.Simulator.BasePrices))
	for symbol, price := range cfg.Simulator.BasePrices {
		basePrices[symbol] = decimal.NewFromFloat(price).Round(2)
	}
	fallbackPrice := decimal.NewFromFloat(cfg.Simulator.FallbackPrice).Round(2)

	// 组装核心服务
	sim := simulator.NewPriceSimulator(basePrices, fallbackPrice)
	dispatcher := notifier.NewDispatcher(natsClient)
	priceService := service.NewPriceService(db.Price(), priceCache, sim, cfg.Simulator.CacheTTL.Std())
	alertService := service.NewAlertService(db.Alert(), dispatcher)

	// 监控登记表
	mon := monitor.NewMonitor()
	mon.RegisterComponent("pipeline")
	mon.RegisterComponent("postgres")
	mon.RegisterComponent("redis")
	mon.RegisterComponent("nats")

	// 行情调度器
	tickScheduler := scheduler.NewTickScheduler(
		priceService,
		db.Price(),
		priceCache,
		alertService,
		dispatcher,
		cfg.Simulator.TickInterval.Std(),
		cfg.Simulator.FailureCooldown.Std(),
		cfg.Simulator.CacheTTL.Std(),
	)
	tickScheduler.SetStatusReporter(mon)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tickScheduler.Start(ctx)

	// 维护任务：历史数据清理 + 依赖健康巡检
	maintenance := scheduler.NewMaintenanceScheduler(db.Price(), mon, 7)
	maintenance.AddHealthCheck("postgres", func(ctx context.Context) error {
		return db.Ping()
	})
	maintenance.AddHealthCheck("redis", func(ctx context.Context) error {
		return priceCache.Ping(ctx)
	})
	maintenance.AddHealthCheck("nats", func(ctx context.Context) error {
		if !natsClient.IsConnected() {
			return errNATSDisconnected
		}
		return nil
	})
	maintenance.Start()
	defer maintenance.Stop()

	// 启动API服务器
	handlers := api.NewHandlers(priceService, alertService, mon)
	server := api.NewServer(cfg)
	server.SetupRoutes(handlers)
	server.Start()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭价格监控服务...")

	// 先停调度器，再关HTTP
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭API服务器失败: %v\n", err)
	}

	log.Println("价格监控服务已退出")
}

// errNATSDisconnected NATS断连错误
var errNATSDisconnected = errors.New("NATS连接已断开")
