package simulator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PriceRadar/pkg/model"
)

func newTestSimulator() *PriceSimulator {
	return NewPriceSimulator(map[string]decimal.Decimal{
		"AAPL": decimal.NewFromFloat(180.00),
		"MSFT": decimal.NewFromFloat(380.00),
	}, decimal.NewFromFloat(100.00))
}

func TestNextInvariants(t *testing.T) {
	sim := newTestSimulator()
	tick := sim.Seed("AAPL")

	// 连续推进，验证每一步的价格不变量
	for i := 0; i < 1000; i++ {
		next := sim.Next(tick)

		if next.Price.LessThan(decimal.NewFromFloat(0.01)) {
			t.Fatalf("第%d步价格跌破下限: %s", i, next.Price)
		}
		if next.DayLow.GreaterThan(next.Price) || next.DayHigh.LessThan(next.Price) {
			t.Fatalf("第%d步价格越界: low=%s price=%s high=%s",
				i, next.DayLow, next.Price, next.DayHigh)
		}
		if !next.DayOpen.Equal(tick.DayOpen) {
			t.Fatalf("开盘价被修改: 期望 %s 实际 %s", tick.DayOpen, next.DayOpen)
		}
		if next.DayHigh.LessThan(tick.DayHigh) {
			t.Fatalf("最高价回落: %s -> %s", tick.DayHigh, next.DayHigh)
		}
		if next.DayLow.GreaterThan(tick.DayLow) {
			t.Fatalf("最低价抬升: %s -> %s", tick.DayLow, next.DayLow)
		}
		if next.Symbol != tick.Symbol {
			t.Fatalf("股票代码被修改: %s", next.Symbol)
		}
		tick = next
	}
}

func TestNextChangeBounds(t *testing.T) {
	sim := newTestSimulator()
	prev := sim.Seed("MSFT")

	// 单步涨跌幅不应超出 ±2%
	for i := 0; i < 500; i++ {
		next := sim.Next(prev)

		maxUp := prev.Price.Mul(decimal.NewFromFloat(1.02)).Round(2)
		maxDown := prev.Price.Mul(decimal.NewFromFloat(0.98)).Round(2)
		if next.Price.GreaterThan(maxUp) || next.Price.LessThan(maxDown) {
			t.Fatalf("涨跌幅越界: %s -> %s", prev.Price, next.Price)
		}
		prev = next
	}
}

func TestNextFloorsAtMinPrice(t *testing.T) {
	sim := newTestSimulator()
	prev := &model.StockPrice{
		Symbol:    "PENNY",
		Price:     decimal.NewFromFloat(0.01),
		Timestamp: time.Now(),
		DayOpen:   decimal.NewFromFloat(0.01),
		DayHigh:   decimal.NewFromFloat(0.01),
		DayLow:    decimal.NewFromFloat(0.01),
	}

	for i := 0; i < 100; i++ {
		next := sim.Next(prev)
		if next.Price.LessThan(decimal.NewFromFloat(0.01)) {
			t.Fatalf("价格跌破0.01: %s", next.Price)
		}
		prev = next
	}
}

func TestSeed(t *testing.T) {
	sim := newTestSimulator()

	tests := []struct {
		name   string
		symbol string
		want   decimal.Decimal
	}{
		{"已配置股票", "AAPL", decimal.NewFromFloat(180.00)},
		{"未配置股票使用兜底价格", "UNKNOWN", decimal.NewFromFloat(100.00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tick := sim.Seed(tt.symbol)

			if tick.Symbol != tt.symbol {
				t.Errorf("股票代码错误: %s", tick.Symbol)
			}
			if !tick.Price.Equal(tt.want) {
				t.Errorf("种子价格错误: 期望 %s 实际 %s", tt.want, tick.Price)
			}
			// 首个价格的开高低都应等于基准价格
			if !tick.DayOpen.Equal(tt.want) || !tick.DayHigh.Equal(tt.want) || !tick.DayLow.Equal(tt.want) {
				t.Errorf("开高低初始化错误: open=%s high=%s low=%s",
					tick.DayOpen, tick.DayHigh, tick.DayLow)
			}
		})
	}
}

func TestSymbols(t *testing.T) {
	sim := newTestSimulator()
	symbols := sim.Symbols()
	if len(symbols) != 2 {
		t.Fatalf("股票数量错误: %d", len(symbols))
	}
}
