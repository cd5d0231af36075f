package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"PriceRadar/pkg/model"
)

const keyPrefix = "stock_price:"

// PriceCache 价格缓存，旁路缓存模式的Redis封装
// 所有操作都可能因网络故障失败，调用方必须把失败当作缓存未命中处理，
// 回退到数据库读取，缓存缺失不影响正确性
type PriceCache struct {
	client *redis.Client
}

// NewPriceCache 创建价格缓存
func NewPriceCache(client *redis.Client) *PriceCache {
	return &PriceCache{client: client}
}

// Get 获取缓存的价格，未命中返回 nil
func (c *PriceCache) Get(ctx context.Context, symbol string) (*model.StockPrice, error) {
	data, err := c.client.Get(ctx, keyPrefix+symbol).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取价格缓存失败: %w", err)
	}

	var price model.StockPrice
	if err := json.Unmarshal(data, &price); err != nil {
		return nil, fmt.Errorf("反序列化缓存价格失败: %w", err)
	}
	return &price, nil
}

// Set 写入价格缓存并设置过期时间
func (c *PriceCache) Set(ctx context.Context, price *model.StockPrice, ttl time.Duration) error {
	data, err := json.Marshal(price)
	if err != nil {
		return fmt.Errorf("序列化价格失败: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+price.Symbol, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入价格缓存失败: %w", err)
	}
	return nil
}

// Remove 删除缓存条目
func (c *PriceCache) Remove(ctx context.Context, symbol string) error {
	if err := c.client.Del(ctx, keyPrefix+symbol).Err(); err != nil {
		return fmt.Errorf("删除价格缓存失败: %w", err)
	}
	return nil
}

// Exists 检查缓存条目是否存在
func (c *PriceCache) Exists(ctx context.Context, symbol string) (bool, error) {
	n, err := c.client.Exists(ctx, keyPrefix+symbol).Result()
	if err != nil {
		return false, fmt.Errorf("检查价格缓存失败: %w", err)
	}
	return n > 0, nil
}

// Ping 检查Redis连通性
func (c *PriceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
