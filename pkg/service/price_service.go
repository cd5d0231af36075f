package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"PriceRadar/pkg/model"
)

// PriceStore 价格存储网关接口
type PriceStore interface {
	GetLatest(ctx context.Context, symbol string) (*model.StockPrice, error)
	GetLatestBatch(ctx context.Context, symbols []string) ([]*model.StockPrice, error)
	GetHistory(ctx context.Context, symbol string, from, to time.Time) ([]*model.StockPrice, error)
	Save(ctx context.Context, price *model.StockPrice) error
	SaveBatch(ctx context.Context, prices []*model.StockPrice) error
}

// PriceCache 价格缓存接口
type PriceCache interface {
	Get(ctx context.Context, symbol string) (*model.StockPrice, error)
	Set(ctx context.Context, price *model.StockPrice, ttl time.Duration) error
	Remove(ctx context.Context, symbol string) error
	Exists(ctx context.Context, symbol string) (bool, error)
}

// Simulator 价格模拟接口
type Simulator interface {
	Next(previous *model.StockPrice) *model.StockPrice
	Seed(symbol string) *model.StockPrice
	Symbols() []string
}

// PriceService 价格查询与模拟服务
// 读路径为旁路缓存：缓存命中直接返回，未命中读库并回填，
// 库中也没有时用模拟器生成种子价格并落库
type PriceService struct {
	store    PriceStore
	cache    PriceCache
	sim      Simulator
	cacheTTL time.Duration
}

// NewPriceService 创建价格服务
func NewPriceService(store PriceStore, cache PriceCache, sim Simulator, cacheTTL time.Duration) *PriceService {
	return &PriceService{
		store:    store,
		cache:    cache,
		sim:      sim,
		cacheTTL: cacheTTL,
	}
}

// Symbols 返回跟踪中的股票代码，排序保证输出稳定
func (s *PriceService) Symbols() []string {
	symbols := s.sim.Symbols()
	sort.Strings(symbols)
	return symbols
}

// CurrentPrice 获取某股票的当前价格
// 解析顺序：缓存 -> 数据库 -> 模拟器种子价格
func (s *PriceService) CurrentPrice(ctx context.Context, symbol string) (*model.StockPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("股票代码不能为空")
	}

	// 缓存故障按未命中处理，回退到数据库
	cached, err := s.cache.Get(ctx, symbol)
	if err != nil {
		log.Printf("读取价格缓存失败，回退数据库: %v\n", err)
	}
	if cached != nil {
		return cached, nil
	}

	latest, err := s.store.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		if err := s.cache.Set(ctx, latest, s.cacheTTL); err != nil {
			log.Printf("回填价格缓存失败: %v\n", err)
		}
		return latest, nil
	}

	// 首次访问，生成种子价格并落库
	// 并发首次访问可能产生重复种子记录，这里接受该窗口，
	// 最新记录按时间戳取，重复行不影响读取正确性
	seed := s.sim.Seed(symbol)
	if err := s.store.Save(ctx, seed); err != nil {
		return nil, fmt.Errorf("保存种子价格失败: %w", err)
	}
	return seed, nil
}

// CurrentPrices 获取多个股票的当前价格
// 数据库会话不保证并发安全，这里串行处理
func (s *PriceService) CurrentPrices(ctx context.Context, symbols []string) ([]*model.StockPrice, error) {
	prices := make([]*model.StockPrice, 0, len(symbols))
	for _, symbol := range symbols {
		price, err := s.CurrentPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
		prices = append(prices, price)
	}
	return prices, nil
}

// History 查询历史价格
func (s *PriceService) History(ctx context.Context, symbol string, from, to time.Time) ([]*model.StockPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("股票代码不能为空")
	}
	return s.store.GetHistory(ctx, symbol, from, to)
}

// SimulateAll 为所有跟踪的股票生成下一轮模拟价格
func (s *PriceService) SimulateAll(ctx context.Context) ([]*model.StockPrice, error) {
	symbols := s.Symbols()
	prices := make([]*model.StockPrice, 0, len(symbols))

	for _, symbol := range symbols {
		current, err := s.CurrentPrice(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("获取 %s 当前价格失败: %w", symbol, err)
		}
		prices = append(prices, s.sim.Next(current))
	}

	return prices, nil
}
