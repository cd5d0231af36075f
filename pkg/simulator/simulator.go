package simulator

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"PriceRadar/pkg/model"
)

// 价格下限，模拟价格不允许跌到0
var minPrice = decimal.NewFromFloat(0.01)

// PriceSimulator 价格模拟器
// 基准价格表在构造时注入且不再变更，未配置的股票使用兜底基准价格
type PriceSimulator struct {
	basePrices    map[string]decimal.Decimal
	fallbackPrice decimal.Decimal
	rng           *rand.Rand
}

// NewPriceSimulator 创建价格模拟器
func NewPriceSimulator(basePrices map[string]decimal.Decimal, fallbackPrice decimal.Decimal) *PriceSimulator {
	// 复制一份，保证外部修改不影响模拟器
	prices := make(map[string]decimal.Decimal, len(basePrices))
	for symbol, price := range basePrices {
		prices[symbol] = price
	}

	return &PriceSimulator{
		basePrices:    prices,
		fallbackPrice: fallbackPrice,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Symbols 返回配置了基准价格的股票代码
func (s *PriceSimulator) Symbols() []string {
	symbols := make([]string, 0, len(s.basePrices))
	for symbol := range s.basePrices {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Next 基于上一个价格生成下一个模拟价格
// 涨跌幅从 {-2%, -1%, 0%, +1%, +2%} 中均匀抽取，结果保留两位小数且不低于0.01
func (s *PriceSimulator) Next(previous *model.StockPrice) *model.StockPrice {
	changePercent := int64(s.rng.Intn(5) - 2) // -2 到 +2

	change := previous.Price.
		Mul(decimal.NewFromInt(changePercent)).
		Div(decimal.NewFromInt(100))
	newPrice := previous.Price.Add(change).Round(2)

	if newPrice.LessThan(minPrice) {
		newPrice = minPrice
	}

	return &model.StockPrice{
		Symbol:    previous.Symbol,
		Price:     newPrice,
		Timestamp: time.Now().UTC(),
		DayOpen:   previous.DayOpen,
		DayHigh:   decimal.Max(previous.DayHigh, newPrice),
		DayLow:    decimal.Min(previous.DayLow, newPrice),
	}
}

// Seed 为没有任何历史的股票生成首个价格
// 开盘价、最高价、最低价都等于基准价格
func (s *PriceSimulator) Seed(symbol string) *model.StockPrice {
	basePrice, ok := s.basePrices[symbol]
	if !ok {
		basePrice = s.fallbackPrice
	}

	return &model.StockPrice{
		Symbol:    symbol,
		Price:     basePrice,
		Timestamp: time.Now().UTC(),
		DayOpen:   basePrice,
		DayHigh:   basePrice,
		DayLow:    basePrice,
	}
}
