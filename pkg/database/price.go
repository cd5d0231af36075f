// pkg/database/price.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"PriceRadar/pkg/model"
)

// PriceDB 价格持久化网关
// 每次调用通过 WithContext 获取独立会话，调度器与读路径互不共享逻辑连接
type PriceDB struct {
	db *gorm.DB
}

// GetLatest 获取某股票的最新价格，不存在时返回 nil
func (p *PriceDB) GetLatest(ctx context.Context, symbol string) (*model.StockPrice, error) {
	var price model.StockPrice
	err := p.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC").
		First(&price).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 无记录不是错误，由调用方决定是否落种子价格
			return nil, nil
		}
		return nil, fmt.Errorf("获取最新价格失败: %w", err)
	}
	return &price, nil
}

// GetLatestBatch 获取多个股票的最新价格，缺失的股票直接跳过
func (p *PriceDB) GetLatestBatch(ctx context.Context, symbols []string) ([]*model.StockPrice, error) {
	prices := make([]*model.StockPrice, 0, len(symbols))
	for _, symbol := range symbols {
		price, err := p.GetLatest(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if price != nil {
			prices = append(prices, price)
		}
	}
	return prices, nil
}

// GetHistory 查询时间范围内的历史价格，按时间升序返回
func (p *PriceDB) GetHistory(ctx context.Context, symbol string, from, to time.Time) ([]*model.StockPrice, error) {
	var prices []*model.StockPrice
	err := p.db.WithContext(ctx).
		Where("symbol = ? AND timestamp BETWEEN ? AND ?", symbol, from, to).
		Order("timestamp ASC").
		Find(&prices).Error

	if err != nil {
		return nil, fmt.Errorf("查询历史价格失败: %w", err)
	}
	return prices, nil
}

// Save 保存单条价格记录
func (p *PriceDB) Save(ctx context.Context, price *model.StockPrice) error {
	if err := p.db.WithContext(ctx).Create(price).Error; err != nil {
		return fmt.Errorf("保存价格失败: %w", err)
	}
	return nil
}

// SaveBatch 批量保存价格记录
func (p *PriceDB) SaveBatch(ctx context.Context, prices []*model.StockPrice) error {
	if len(prices) == 0 {
		return nil
	}
	if err := p.db.WithContext(ctx).CreateInBatches(prices, 1000).Error; err != nil {
		return fmt.Errorf("批量保存价格失败: %w", err)
	}
	return nil
}

// DeleteOldPrices 清理过期历史价格
func (p *PriceDB) DeleteOldPrices(ctx context.Context, days int) error {
	cutoff := time.Now().AddDate(0, 0, -days)
	err := p.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&model.StockPrice{}).Error
	if err != nil {
		return fmt.Errorf("清理历史价格失败: %w", err)
	}
	return nil
}
