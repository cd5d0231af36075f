package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// PriceCleaner 历史价格清理接口
type PriceCleaner interface {
	DeleteOldPrices(ctx context.Context, days int) error
}

// HealthCheck 依赖健康检查
type HealthCheck struct {
	Component string
	Check     func(ctx context.Context) error
}

// MaintenanceScheduler 后台维护任务调度器
// 与行情管道无关的周期性杂务走cron：历史数据清理、依赖健康巡检
type MaintenanceScheduler struct {
	cron          *cron.Cron
	cleaner       PriceCleaner
	reporter      StatusReporter
	checks        []HealthCheck
	retentionDays int
}

// NewMaintenanceScheduler 创建维护任务调度器
func NewMaintenanceScheduler(cleaner PriceCleaner, reporter StatusReporter, retentionDays int) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:          cron.New(),
		cleaner:       cleaner,
		reporter:      reporter,
		retentionDays: retentionDays,
	}
}

// AddHealthCheck 注册依赖健康检查
func (m *MaintenanceScheduler) AddHealthCheck(component string, check func(ctx context.Context) error) {
	m.checks = append(m.checks, HealthCheck{Component: component, Check: check})
}

// Start 启动维护任务
func (m *MaintenanceScheduler) Start() {
	// cron的首次执行在一个完整周期之后，启动时先同步巡检一轮，
	// 依赖健康时服务不必等5分钟才就绪
	m.runHealthChecks()

	// 每日凌晨清理过期历史价格
	m.cron.AddFunc("30 3 * * *", func() {
		log.Printf("清理 %d 天前的历史价格...\n", m.retentionDays)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := m.cleaner.DeleteOldPrices(ctx, m.retentionDays); err != nil {
			log.Printf("清理历史价格失败: %v\n", err)
		}
	})

	// 每5分钟巡检依赖健康状态
	m.cron.AddFunc("@every 5m", m.runHealthChecks)

	m.cron.Start()
	log.Println("维护任务调度器已启动")
}

// Stop 停止维护任务
func (m *MaintenanceScheduler) Stop() {
	m.cron.Stop()
}

// runHealthChecks 巡检所有已注册的依赖
func (m *MaintenanceScheduler) runHealthChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, hc := range m.checks {
		if err := hc.Check(ctx); err != nil {
			m.reporter.UpdateStatus(hc.Component, "unhealthy", err.Error())
			continue
		}
		m.reporter.UpdateStatus(hc.Component, "healthy", "")
	}
}
