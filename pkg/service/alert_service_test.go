package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PriceRadar/pkg/model"
)

// fakeAlertStore 内存告警存储，可按ID注入更新失败
type fakeAlertStore struct {
	alerts    map[string]*model.PriceAlert
	updateErr map[string]error
	updated   []string
}

func newFakeAlertStore(alerts ...*model.PriceAlert) *fakeAlertStore {
	store := &fakeAlertStore{
		alerts:    make(map[string]*model.PriceAlert),
		updateErr: make(map[string]error),
	}
	for _, alert := range alerts {
		store.alerts[alert.ID] = alert
	}
	return store
}

func (f *fakeAlertStore) GetByID(ctx context.Context, id string) (*model.PriceAlert, error) {
	alert, ok := f.alerts[id]
	if !ok {
		return nil, nil
	}
	copied := *alert
	return &copied, nil
}

func (f *fakeAlertStore) GetActive(ctx context.Context) ([]*model.PriceAlert, error) {
	var active []*model.PriceAlert
	for _, alert := range f.alerts {
		if alert.Status == model.StatusActive {
			copied := *alert
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (f *fakeAlertStore) GetActiveBySymbol(ctx context.Context, symbol string) ([]*model.PriceAlert, error) {
	var active []*model.PriceAlert
	for _, alert := range f.alerts {
		if alert.Status == model.StatusActive && alert.Symbol == symbol {
			copied := *alert
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (f *fakeAlertStore) GetByUser(ctx context.Context, userID string) ([]*model.PriceAlert, error) {
	var result []*model.PriceAlert
	for _, alert := range f.alerts {
		if alert.UserID == userID {
			copied := *alert
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeAlertStore) Create(ctx context.Context, alert *model.PriceAlert) error {
	if alert.ID == "" {
		alert.ID = fmt.Sprintf("alert-%d", len(f.alerts)+1)
	}
	copied := *alert
	f.alerts[alert.ID] = &copied
	return nil
}

func (f *fakeAlertStore) Update(ctx context.Context, alert *model.PriceAlert) error {
	if err := f.updateErr[alert.ID]; err != nil {
		return err
	}
	copied := *alert
	f.alerts[alert.ID] = &copied
	f.updated = append(f.updated, alert.ID)
	return nil
}

func (f *fakeAlertStore) Delete(ctx context.Context, id string) error {
	delete(f.alerts, id)
	return nil
}

// fakeNotifier 记录推送过的通知
type fakeNotifier struct {
	notifications []*model.AlertNotification
	broadcasts    []*model.StockPrice
	notifyErr     error
}

func (f *fakeNotifier) BroadcastPriceUpdate(ctx context.Context, price *model.StockPrice) error {
	f.broadcasts = append(f.broadcasts, price)
	return nil
}

func (f *fakeNotifier) NotifyUser(ctx context.Context, userID string, n *model.AlertNotification) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func newTick(symbol string, price float64) *model.StockPrice {
	p := decimal.NewFromFloat(price)
	return &model.StockPrice{
		Symbol:    symbol,
		Price:     p,
		Timestamp: time.Now().UTC(),
		DayOpen:   p,
		DayHigh:   p,
		DayLow:    p,
	}
}

func newActiveAlert(id, userID, symbol string, threshold float64, direction model.AlertDirection) *model.PriceAlert {
	return &model.PriceAlert{
		ID:        id,
		UserID:    userID,
		Symbol:    symbol,
		Threshold: decimal.NewFromFloat(threshold),
		Direction: direction,
		Status:    model.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCheckAlertsThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		direction model.AlertDirection
		threshold float64
		price     float64
		triggered bool
	}{
		{"above恰好等于阈值触发", model.DirectionAbove, 200.00, 200.00, true},
		{"above低于阈值不触发", model.DirectionAbove, 200.00, 199.99, false},
		{"above高于阈值触发", model.DirectionAbove, 200.00, 200.01, true},
		{"below恰好等于阈值触发", model.DirectionBelow, 150.00, 150.00, true},
		{"below高于阈值不触发", model.DirectionBelow, 150.00, 150.01, false},
		{"below低于阈值触发", model.DirectionBelow, 150.00, 149.99, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeAlertStore(newActiveAlert("a1", "u1", "AAPL", tt.threshold, tt.direction))
			notifier := &fakeNotifier{}
			svc := NewAlertService(store, notifier)

			ticks := map[string]*model.StockPrice{"AAPL": newTick("AAPL", tt.price)}
			notifications, err := svc.CheckAlerts(context.Background(), ticks)
			if err != nil {
				t.Fatalf("评估告警失败: %v", err)
			}

			if tt.triggered && len(notifications) != 1 {
				t.Fatalf("期望触发1条通知，实际 %d", len(notifications))
			}
			if !tt.triggered && len(notifications) != 0 {
				t.Fatalf("期望不触发，实际 %d 条通知", len(notifications))
			}
		})
	}
}

func TestCheckAlertsCreateAndTriggerScenario(t *testing.T) {
	store := newFakeAlertStore()
	notifier := &fakeNotifier{}
	svc := NewAlertService(store, notifier)

	alert, err := svc.CreateAlert(context.Background(), "u1", "AAPL",
		decimal.NewFromFloat(180.00), "above")
	if err != nil {
		t.Fatalf("创建告警失败: %v", err)
	}

	ticks := map[string]*model.StockPrice{"AAPL": newTick("AAPL", 181.00)}
	notifications, err := svc.CheckAlerts(context.Background(), ticks)
	if err != nil {
		t.Fatalf("评估告警失败: %v", err)
	}

	// 恰好一条通知，字段正确
	if len(notifications) != 1 {
		t.Fatalf("期望1条通知，实际 %d", len(notifications))
	}
	n := notifications[0]
	if n.AlertID != alert.ID || n.UserID != "u1" || n.Symbol != "AAPL" {
		t.Errorf("通知字段错误: %+v", n)
	}
	if !n.CurrentPrice.Equal(decimal.NewFromFloat(181.00)) {
		t.Errorf("通知价格错误: %s", n.CurrentPrice)
	}
	if len(notifier.notifications) != 1 {
		t.Errorf("期望推送1次，实际 %d", len(notifier.notifications))
	}

	// 存储中的告警状态已迁移到triggered
	stored := store.alerts[alert.ID]
	if stored.Status != model.StatusTriggered {
		t.Errorf("告警状态未迁移: %s", stored.Status)
	}
	if stored.TriggeredAt == nil || stored.TriggeredPrice == nil {
		t.Fatal("触发时间或触发价格未记录")
	}
	if !stored.TriggeredPrice.Equal(decimal.NewFromFloat(181.00)) {
		t.Errorf("触发价格错误: %s", stored.TriggeredPrice)
	}
}

func TestCheckAlertsTriggeredIsTerminal(t *testing.T) {
	store := newFakeAlertStore(newActiveAlert("a1", "u1", "AAPL", 180.00, model.DirectionAbove))
	notifier := &fakeNotifier{}
	svc := NewAlertService(store, notifier)

	ticks := map[string]*model.StockPrice{"AAPL": newTick("AAPL", 185.00)}
	if _, err := svc.CheckAlerts(context.Background(), ticks); err != nil {
		t.Fatalf("首轮评估失败: %v", err)
	}

	firstTriggeredAt := *store.alerts["a1"].TriggeredAt
	firstTriggeredPrice := *store.alerts["a1"].TriggeredPrice

	// 再跑多轮更高的价格，已触发的告警不应再产生任何通知或变更
	for i := 0; i < 3; i++ {
		ticks = map[string]*model.StockPrice{"AAPL": newTick("AAPL", 190.00+float64(i))}
		notifications, err := svc.CheckAlerts(context.Background(), ticks)
		if err != nil {
			t.Fatalf("第%d轮评估失败: %v", i+2, err)
		}
		if len(notifications) != 0 {
			t.Fatalf("已触发告警重复发出通知: %d 条", len(notifications))
		}
	}

	stored := store.alerts["a1"]
	if stored.Status != model.StatusTriggered {
		t.Errorf("状态发生回退: %s", stored.Status)
	}
	if !stored.TriggeredAt.Equal(firstTriggeredAt) {
		t.Errorf("触发时间被修改: %s -> %s", firstTriggeredAt, stored.TriggeredAt)
	}
	if !stored.TriggeredPrice.Equal(firstTriggeredPrice) {
		t.Errorf("触发价格被修改: %s -> %s", firstTriggeredPrice, stored.TriggeredPrice)
	}
	if len(notifier.notifications) != 1 {
		t.Errorf("总推送次数错误: %d", len(notifier.notifications))
	}
}

func TestCheckAlertsFailureIsolation(t *testing.T) {
	store := newFakeAlertStore(
		newActiveAlert("bad", "u1", "AAPL", 180.00, model.DirectionAbove),
		newActiveAlert("good", "u2", "AAPL", 180.00, model.DirectionAbove),
	)
	// bad 告警的持久化路径损坏
	store.updateErr["bad"] = errors.New("模拟存储故障")

	notifier := &fakeNotifier{}
	svc := NewAlertService(store, notifier)

	ticks := map[string]*model.StockPrice{"AAPL": newTick("AAPL", 181.00)}
	notifications, err := svc.CheckAlerts(context.Background(), ticks)
	if err != nil {
		t.Fatalf("评估告警失败: %v", err)
	}

	// 两条都应发出通知，good 的更新必须成功
	if len(notifications) != 2 {
		t.Fatalf("期望2条通知，实际 %d", len(notifications))
	}
	if store.alerts["good"].Status != model.StatusTriggered {
		t.Error("正常告警的更新被故障告警阻塞")
	}
	found := false
	for _, id := range store.updated {
		if id == "good" {
			found = true
		}
	}
	if !found {
		t.Error("正常告警未持久化")
	}
}

func TestCheckAlertsSkipsSymbolsWithoutTick(t *testing.T) {
	store := newFakeAlertStore(newActiveAlert("a1", "u1", "TSLA", 100.00, model.DirectionAbove))
	notifier := &fakeNotifier{}
	svc := NewAlertService(store, notifier)

	// 本轮只有AAPL的行情
	ticks := map[string]*model.StockPrice{"AAPL": newTick("AAPL", 500.00)}
	notifications, err := svc.CheckAlerts(context.Background(), ticks)
	if err != nil {
		t.Fatalf("评估告警失败: %v", err)
	}
	if len(notifications) != 0 {
		t.Fatalf("无行情的告警被触发: %d 条", len(notifications))
	}
	if store.alerts["a1"].Status != model.StatusActive {
		t.Error("无行情的告警状态被修改")
	}
}

func TestCreateAlertValidation(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		symbol    string
		threshold float64
		direction string
		wantErr   bool
	}{
		{"合法请求", "u1", "AAPL", 180.00, "above", false},
		{"大小写和空白被规整", "u1", "  aapl ", 180.00, "Below", false},
		{"用户ID为空", "", "AAPL", 180.00, "above", true},
		{"股票代码为空", "u1", "  ", 180.00, "above", true},
		{"股票代码过长", "u1", "TOOLONGSYMBOL", 180.00, "above", true},
		{"阈值为零", "u1", "AAPL", 0, "above", true},
		{"阈值为负", "u1", "AAPL", -1.00, "above", true},
		{"方向非法", "u1", "AAPL", 180.00, "sideways", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeAlertStore()
			svc := NewAlertService(store, &fakeNotifier{})

			alert, err := svc.CreateAlert(context.Background(), tt.userID, tt.symbol,
				decimal.NewFromFloat(tt.threshold), tt.direction)

			if tt.wantErr {
				if err == nil {
					t.Fatal("期望校验失败，实际成功")
				}
				if len(store.alerts) != 0 {
					t.Error("非法请求不应落库")
				}
				return
			}

			if err != nil {
				t.Fatalf("创建告警失败: %v", err)
			}
			if alert.Symbol != "AAPL" {
				t.Errorf("股票代码未规整: %s", alert.Symbol)
			}
			if alert.Status != model.StatusActive {
				t.Errorf("初始状态错误: %s", alert.Status)
			}
		})
	}
}

func TestDeleteAlertOwnership(t *testing.T) {
	store := newFakeAlertStore(newActiveAlert("a1", "u1", "AAPL", 180.00, model.DirectionAbove))
	svc := NewAlertService(store, &fakeNotifier{})

	// 其他用户删除应被拒绝
	if err := svc.DeleteAlert(context.Background(), "a1", "u2"); !errors.Is(err, ErrAlertForbidden) {
		t.Fatalf("期望权限错误，实际: %v", err)
	}
	if _, ok := store.alerts["a1"]; !ok {
		t.Fatal("告警被非属主删除")
	}

	// 不存在的告警返回明确的不存在错误
	if err := svc.DeleteAlert(context.Background(), "missing", "u1"); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("期望不存在错误，实际: %v", err)
	}

	// 属主删除成功
	if err := svc.DeleteAlert(context.Background(), "a1", "u1"); err != nil {
		t.Fatalf("属主删除失败: %v", err)
	}
	if _, ok := store.alerts["a1"]; ok {
		t.Fatal("告警未被删除")
	}
}

func TestCheckAlertsNotifyFailureDoesNotBlockPersistence(t *testing.T) {
	store := newFakeAlertStore(newActiveAlert("a1", "u1", "AAPL", 180.00, model.DirectionAbove))
	notifier := &fakeNotifier{notifyErr: errors.New("模拟推送故障")}
	svc := NewAlertService(store, notifier)

	ticks := map[string]*model.StockPrice{"AAPL": newTick("AAPL", 181.00)}
	if _, err := svc.CheckAlerts(context.Background(), ticks); err != nil {
		t.Fatalf("评估告警失败: %v", err)
	}

	// 推送失败不影响状态迁移的持久化
	if store.alerts["a1"].Status != model.StatusTriggered {
		t.Error("推送失败阻塞了告警持久化")
	}
}
