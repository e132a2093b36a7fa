package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zeus1411/aquastore/internal/domain/product"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// ProductCache 商品缓存（实现product.Cache）
// 设计说明：
// 1. Key设计：product:{id}，JSON序列化整个商品（含规格）
// 2. 库存变更后必须同步调用Invalidate，与扣减同一逻辑步骤——
//    否则并发读者会拿到旧库存
// 3. 缓存未命中返回nil而非错误，调用方回源数据库
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache 创建商品缓存
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

// Get 读取缓存的商品，未命中返回nil
func (c *ProductCache) Get(ctx context.Context, id uint) (*product.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "读取商品缓存失败")
	}

	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		// 缓存数据损坏按未命中处理，顺手删掉
		c.client.Del(ctx, productKey(id))
		return nil, nil
	}
	return &p, nil
}

// Set 写入缓存
func (c *ProductCache) Set(ctx context.Context, p *product.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return apperrors.Wrap(err, "序列化商品失败")
	}
	if err := c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "写入商品缓存失败")
	}
	return nil
}

// Invalidate 删除缓存（幂等）
func (c *ProductCache) Invalidate(ctx context.Context, id uint) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return apperrors.Wrap(err, "删除商品缓存失败")
	}
	return nil
}
