// pkg/database/alert.go
package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"PriceRadar/pkg/model"
)

// AlertDB 告警持久化网关
type AlertDB struct {
	db *gorm.DB
}

// GetByID 按ID获取告警，不存在时返回 nil
func (a *AlertDB) GetByID(ctx context.Context, id string) (*model.PriceAlert, error) {
	var alert model.PriceAlert
	err := a.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取告警失败: %w", err)
	}
	return &alert, nil
}

// GetActive 获取所有活跃告警
func (a *AlertDB) GetActive(ctx context.Context) ([]*model.PriceAlert, error) {
	var alerts []*model.PriceAlert
	err := a.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃告警失败: %w", err)
	}
	return alerts, nil
}

// GetActiveBySymbol 获取某股票的活跃告警
func (a *AlertDB) GetActiveBySymbol(ctx context.Context, symbol string) ([]*model.PriceAlert, error) {
	var alerts []*model.PriceAlert
	err := a.db.WithContext(ctx).
		Where("symbol = ? AND status = ?", symbol, model.StatusActive).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询股票活跃告警失败: %w", err)
	}
	return alerts, nil
}

// GetByUser 获取用户的全部告警，按创建时间倒序
func (a *AlertDB) GetByUser(ctx context.Context, userID string) ([]*model.PriceAlert, error) {
	var alerts []*model.PriceAlert
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户告警失败: %w", err)
	}
	return alerts, nil
}

// Create 创建告警
func (a *AlertDB) Create(ctx context.Context, alert *model.PriceAlert) error {
	if err := a.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("创建告警失败: %w", err)
	}
	return nil
}

// Update 更新告警
func (a *AlertDB) Update(ctx context.Context, alert *model.PriceAlert) error {
	if err := a.db.WithContext(ctx).Save(alert).Error; err != nil {
		return fmt.Errorf("更新告警失败: %w", err)
	}
	return nil
}

// Delete 删除告警
func (a *AlertDB) Delete(ctx context.Context, id string) error {
	if err := a.db.WithContext(ctx).Delete(&model.PriceAlert{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除告警失败: %w", err)
	}
	return nil
}
