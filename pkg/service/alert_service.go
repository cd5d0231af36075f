package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PriceRadar/pkg/model"
)

var (
	// ErrAlertNotFound 告警不存在
	ErrAlertNotFound = errors.New("告警不存在")
	// ErrAlertForbidden 用户只能操作自己的告警
	ErrAlertForbidden = errors.New("无权操作该告警")
)

// AlertStore 告警存储网关接口
type AlertStore interface {
	GetByID(ctx context.Context, id string) (*model.PriceAlert, error)
	GetActive(ctx context.Context) ([]*model.PriceAlert, error)
	GetActiveBySymbol(ctx context.Context, symbol string) ([]*model.PriceAlert, error)
	GetByUser(ctx context.Context, userID string) ([]*model.PriceAlert, error)
	Create(ctx context.Context, alert *model.PriceAlert) error
	Update(ctx context.Context, alert *model.PriceAlert) error
	Delete(ctx context.Context, id string) error
}

// Notifier 通知推送接口
type Notifier interface {
	BroadcastPriceUpdate(ctx context.Context, price *model.StockPrice) error
	NotifyUser(ctx context.Context, userID string, notification *model.AlertNotification) error
}

// AlertService 告警服务
// 负责告警的创建、查询、删除边界校验，以及每轮行情的阈值评估
type AlertService struct {
	store    AlertStore
	notifier Notifier
}

// NewAlertService 创建告警服务
func NewAlertService(store AlertStore, notifier Notifier) *AlertService {
	return &AlertService{
		store:    store,
		notifier: notifier,
	}
}

// CreateAlert 创建价格告警，边界校验在这里完成，不合法的请求不会进入评估管道
func (s *AlertService) CreateAlert(ctx context.Context, userID, symbol string, threshold decimal.Decimal, direction string) (*model.PriceAlert, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("用户ID不能为空")
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("股票代码不能为空")
	}
	if len(symbol) > 10 {
		return nil, fmt.Errorf("股票代码过长: %s", symbol)
	}

	if threshold.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("告警阈值必须大于0")
	}

	dir, err := model.ParseAlertDirection(direction)
	if err != nil {
		return nil, err
	}

	alert := &model.PriceAlert{
		UserID:    userID,
		Symbol:    symbol,
		Threshold: threshold,
		Direction: dir,
		Status:    model.StatusActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// GetUserAlerts 获取用户的全部告警
func (s *AlertService) GetUserAlerts(ctx context.Context, userID string) ([]*model.PriceAlert, error) {
	return s.store.GetByUser(ctx, userID)
}

// DeleteAlert 删除告警，只允许删除属于自己的告警
func (s *AlertService) DeleteAlert(ctx context.Context, alertID, userID string) error {
	alert, err := s.store.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert == nil {
		return ErrAlertNotFound
	}
	if alert.UserID != userID {
		return ErrAlertForbidden
	}
	return s.store.Delete(ctx, alertID)
}

// CheckAlerts 用本轮行情评估所有活跃告警
// 已触发的告警处于终态，查询时即被排除，不会重复评估或重复通知。
// 每个告警的持久化彼此独立，单条失败只记录日志，不阻塞其他告警
func (s *AlertService) CheckAlerts(ctx context.Context, ticks map[string]*model.StockPrice) ([]*model.AlertNotification, error) {
	activeAlerts, err := s.store.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取活跃告警失败: %w", err)
	}

	var notifications []*model.AlertNotification
	var triggered []*model.PriceAlert
	now := time.Now().UTC()

	for _, alert := range activeAlerts {
		tick, ok := ticks[alert.Symbol]
		if !ok {
			// 本轮没有该股票的行情，跳过
			continue
		}

		// 阈值比较为闭区间，价格恰好等于阈值时触发
		var isTriggered bool
		switch alert.Direction {
		case model.DirectionAbove:
			isTriggered = tick.Price.GreaterThanOrEqual(alert.Threshold)
		case model.DirectionBelow:
			isTriggered = tick.Price.LessThanOrEqual(alert.Threshold)
		}

		if !isTriggered {
			continue
		}

		if !alert.Trigger(tick.Price, now) {
			continue
		}
		triggered = append(triggered, alert)

		notification := model.NewAlertNotification(alert, tick.Price, now)
		notifications = append(notifications, notification)

		// 推送尽力而为，失败只记录，不重试
		if err := s.notifier.NotifyUser(ctx, alert.UserID, notification); err != nil {
			log.Printf("推送告警通知失败: 用户=%s 告警=%s: %v\n", alert.UserID, alert.ID, err)
		}
	}

	// 逐条持久化已触发的告警，失败互不影响
	for _, alert := range triggered {
		if err := s.store.Update(ctx, alert); err != nil {
			log.Printf("持久化触发告警失败: 告警=%s: %v\n", alert.ID, err)
		}
	}

	if len(triggered) > 0 {
		log.Printf("本轮触发 %d 条告警\n", len(triggered))
	}

	return notifications, nil
}
