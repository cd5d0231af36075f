// pkg/model/alert.go
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertDirection 告警方向枚举
type AlertDirection string

const (
	DirectionAbove AlertDirection = "above" // 价格升破阈值
	DirectionBelow AlertDirection = "below" // 价格跌破阈值
)

// ParseAlertDirection 解析告警方向，只接受 above/below 两种取值
func ParseAlertDirection(s string) (AlertDirection, error) {
	switch AlertDirection(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionAbove:
		return DirectionAbove, nil
	case DirectionBelow:
		return DirectionBelow, nil
	default:
		return "", fmt.Errorf("无效的告警方向: %q，仅支持 above/below", s)
	}
}

// AlertStatus 告警生命周期状态
type AlertStatus string

const (
	StatusActive    AlertStatus = "active"    // 活跃，待评估
	StatusTriggered AlertStatus = "triggered" // 已触发，终态
)

// PriceAlert 用户价格告警
// 状态只允许 active -> triggered 单向迁移，触发后不再参与评估
type PriceAlert struct {
	ID             string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string           `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Symbol         string           `gorm:"type:varchar(10);not null;index" json:"symbol"`
	Threshold      decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"threshold"`
	Direction      AlertDirection   `gorm:"type:varchar(10);not null" json:"direction"`
	Status         AlertStatus      `gorm:"type:varchar(10);not null;index;default:'active'" json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	TriggeredAt    *time.Time       `json:"triggered_at,omitempty"`
	TriggeredPrice *decimal.Decimal `gorm:"type:decimal(18,2)" json:"triggered_price,omitempty"`
}

func (a *PriceAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName 自定义表名
func (PriceAlert) TableName() string {
	return "price_alerts"
}

// Trigger 执行单向状态迁移，重复触发为空操作
func (a *PriceAlert) Trigger(price decimal.Decimal, at time.Time) bool {
	if a.Status == StatusTriggered {
		return false
	}
	a.Status = StatusTriggered
	a.TriggeredAt = &at
	a.TriggeredPrice = &price
	return true
}
