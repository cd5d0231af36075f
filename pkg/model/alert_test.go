package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAlertDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    AlertDirection
		wantErr bool
	}{
		{"above", DirectionAbove, false},
		{"below", DirectionBelow, false},
		{"ABOVE", DirectionAbove, false},
		{" Below ", DirectionBelow, false},
		{"", "", true},
		{"sideways", "", true},
		{"up", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAlertDirection(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAlertDirection(%q) 应返回错误", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAlertDirection(%q) 失败: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlertDirection(%q) = %s, 期望 %s", tt.input, got, tt.want)
		}
	}
}

func TestTriggerIsOneWay(t *testing.T) {
	alert := &PriceAlert{
		ID:        "a1",
		UserID:    "u1",
		Symbol:    "AAPL",
		Threshold: decimal.NewFromFloat(180.00),
		Direction: DirectionAbove,
		Status:    StatusActive,
	}

	firstPrice := decimal.NewFromFloat(181.00)
	firstAt := time.Now().UTC()

	if !alert.Trigger(firstPrice, firstAt) {
		t.Fatal("首次触发应成功")
	}
	if alert.Status != StatusTriggered {
		t.Fatalf("状态未迁移: %s", alert.Status)
	}

	// 重复触发是空操作，原有触发信息不被覆盖
	if alert.Trigger(decimal.NewFromFloat(999.00), firstAt.Add(time.Hour)) {
		t.Fatal("重复触发应被拒绝")
	}
	if !alert.TriggeredPrice.Equal(firstPrice) {
		t.Errorf("触发价格被覆盖: %s", alert.TriggeredPrice)
	}
	if !alert.TriggeredAt.Equal(firstAt) {
		t.Errorf("触发时间被覆盖: %s", alert.TriggeredAt)
	}
}
