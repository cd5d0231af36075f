// pkg/model/notification.go
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertNotification 告警触发通知
// 由告警的状态迁移一比一派生，只用于跨越推送边界，不落库
type AlertNotification struct {
	AlertID      string          `json:"alert_id"`
	UserID       string          `json:"user_id"`
	Symbol       string          `json:"symbol"`
	Threshold    decimal.Decimal `json:"threshold"`
	Direction    AlertDirection  `json:"direction"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Timestamp    time.Time       `json:"timestamp"`
	Message      string          `json:"message"`
}

// NewAlertNotification 根据已触发的告警构造通知
func NewAlertNotification(alert *PriceAlert, currentPrice decimal.Decimal, at time.Time) *AlertNotification {
	verb := "升破"
	if alert.Direction == DirectionBelow {
		verb = "跌破"
	}

	return &AlertNotification{
		AlertID:      alert.ID,
		UserID:       alert.UserID,
		Symbol:       alert.Symbol,
		Threshold:    alert.Threshold,
		Direction:    alert.Direction,
		CurrentPrice: currentPrice,
		Timestamp:    at,
		Message: fmt.Sprintf("%s 已%s阈值 $%s，当前价格 $%s",
			alert.Symbol, verb, alert.Threshold.StringFixed(2), currentPrice.StringFixed(2)),
	}
}
