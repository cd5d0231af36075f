// pkg/model/price.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrice 股票价格快照
// 每个交易周期生成一条新记录，历史记录不可变更
type StockPrice struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Symbol    string          `gorm:"type:varchar(10);not null;index:idx_symbol_timestamp" json:"symbol"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Timestamp time.Time       `gorm:"not null;index:idx_symbol_timestamp" json:"timestamp"`
	DayOpen   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"day_open"`
	DayHigh   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"day_high"`
	DayLow    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"day_low"`
}

// TableName 自定义表名
func (StockPrice) TableName() string {
	return "stock_prices"
}
