package notifier

import (
	"context"
	"fmt"

	"PriceRadar/pkg/model"
)

// Publisher 消息发布接口，由NATS客户端实现
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Dispatcher 实时通知分发器
// 价格更新广播给所有订阅者，告警通知定向推送给对应用户。
// 投递语义为至少一次，失败由调用方记录日志，不做重试
type Dispatcher struct {
	publisher Publisher
}

// NewDispatcher 创建通知分发器
func NewDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

// BroadcastPriceUpdate 广播价格更新
func (d *Dispatcher) BroadcastPriceUpdate(ctx context.Context, price *model.StockPrice) error {
	subject := fmt.Sprintf("prices.%s", price.Symbol)
	if err := d.publisher.Publish(ctx, subject, price); err != nil {
		return fmt.Errorf("广播价格更新失败: %w", err)
	}
	return nil
}

// NotifyUser 向指定用户推送告警通知
func (d *Dispatcher) NotifyUser(ctx context.Context, userID string, notification *model.AlertNotification) error {
	subject := fmt.Sprintf("alerts.user.%s", userID)
	if err := d.publisher.Publish(ctx, subject, notification); err != nil {
		return fmt.Errorf("推送告警通知失败: %w", err)
	}
	return nil
}
