package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"PriceRadar/pkg/model"
)

// PriceSource 行情来源接口
type PriceSource interface {
	SimulateAll(ctx context.Context) ([]*model.StockPrice, error)
}

// PriceSink 行情持久化接口
type PriceSink interface {
	SaveBatch(ctx context.Context, prices []*model.StockPrice) error
}

// PriceCache 价格缓存刷新接口
type PriceCache interface {
	Set(ctx context.Context, price *model.StockPrice, ttl time.Duration) error
}

// AlertChecker 告警评估接口
type AlertChecker interface {
	CheckAlerts(ctx context.Context, ticks map[string]*model.StockPrice) ([]*model.AlertNotification, error)
}

// Broadcaster 价格广播接口
type Broadcaster interface {
	BroadcastPriceUpdate(ctx context.Context, price *model.StockPrice) error
}

// StatusReporter 管道健康状态上报接口
type StatusReporter interface {
	UpdateStatus(component, status, message string)
}

// TickScheduler 行情调度器
// 每个周期执行一次完整管道：模拟 -> 落库 -> 刷缓存 -> 广播 -> 评估告警。
// 任何一步失败都不会终止循环，只会把下一次执行推迟到冷却时间之后，
// 避免对已经退化的依赖形成密集重试
type TickScheduler struct {
	prices      PriceSource
	store       PriceSink
	cache       PriceCache
	alerts      AlertChecker
	broadcaster Broadcaster
	reporter    StatusReporter

	interval time.Duration
	cooldown time.Duration
	cacheTTL time.Duration

	running atomic.Bool
}

// NewTickScheduler 创建行情调度器
func NewTickScheduler(
	prices PriceSource,
	store PriceSink,
	cache PriceCache,
	alerts AlertChecker,
	broadcaster Broadcaster,
	interval, cooldown, cacheTTL time.Duration,
) *TickScheduler {
	return &TickScheduler{
		prices:      prices,
		store:       store,
		cache:       cache,
		alerts:      alerts,
		broadcaster: broadcaster,
		interval:    interval,
		cooldown:    cooldown,
		cacheTTL:    cacheTTL,
	}
}

// SetStatusReporter 注入健康状态上报器
func (s *TickScheduler) SetStatusReporter(reporter StatusReporter) {
	s.reporter = reporter
}

// Start 启动调度循环，阻塞直到ctx被取消
// 重复调用是空操作，调度器只进入一次运行状态
func (s *TickScheduler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("警告: 行情调度器已在运行中")
		return
	}

	log.Printf("行情调度器已启动，周期 %s，失败冷却 %s\n", s.interval, s.cooldown)

	for {
		wait := s.interval

		if err := s.runPipeline(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("行情管道执行失败: %v，冷却 %s 后重试\n", err, s.cooldown)
			s.report("unhealthy", err.Error())
			wait = s.cooldown
		} else {
			s.report("healthy", "")
		}

		select {
		case <-ctx.Done():
			log.Println("行情调度器收到停止信号")
			return
		case <-time.After(wait):
		}
	}

	log.Println("行情调度器收到停止信号")
}

// runPipeline 执行一轮完整的行情管道
// 单轮执行设置截止时间，依赖挂死不会拖垮循环
func (s *TickScheduler) runPipeline(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	// 1. 生成本轮模拟价格
	prices, err := s.prices.SimulateAll(ctx)
	if err != nil {
		return fmt.Errorf("生成模拟价格失败: %w", err)
	}

	// 2. 持久化
	if err := s.store.SaveBatch(ctx, prices); err != nil {
		return fmt.Errorf("持久化价格失败: %w", err)
	}

	// 3. 刷新缓存并广播，两者都是尽力而为，失败不中断管道
	ticks := make(map[string]*model.StockPrice, len(prices))
	for _, price := range prices {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.cache.Set(ctx, price, s.cacheTTL); err != nil {
			log.Printf("刷新 %s 价格缓存失败: %v\n", price.Symbol, err)
		}
		if err := s.broadcaster.BroadcastPriceUpdate(ctx, price); err != nil {
			log.Printf("广播 %s 价格更新失败: %v\n", price.Symbol, err)
		}

		ticks[price.Symbol] = price
	}

	// 4. 评估告警
	if _, err := s.alerts.CheckAlerts(ctx, ticks); err != nil {
		return fmt.Errorf("评估告警失败: %w", err)
	}

	return nil
}

// report 上报管道状态
func (s *TickScheduler) report(status, message string) {
	if s.reporter != nil {
		s.reporter.UpdateStatus("pipeline", status, message)
	}
}
