package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pricingVersionKey = "pricing:version"

// PricingVersion 读取计价配置版本号，未命中时返回 0
func PricingVersion(ctx context.Context) (int64, error) {
	if !Enabled() {
		return 0, nil
	}
	version, err := redisClient.Get(ctx, buildKey(pricingVersionKey)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// BumpPricingVersion 税率或配送配置变更后递增版本号，使旧报价缓存整体失效
func BumpPricingVersion(ctx context.Context) (int64, error) {
	if !Enabled() {
		return 0, nil
	}
	return redisClient.Incr(ctx, buildKey(pricingVersionKey)).Result()
}

// QuoteKey 构建带版本号的报价缓存键
func QuoteKey(kind string, version int64, fingerprint string) string {
	return fmt.Sprintf("quote:%s:v%d:%s", kind, version, fingerprint)
}

// GetQuote 读取报价缓存
func GetQuote(ctx context.Context, key string, dest interface{}) (bool, error) {
	return GetJSON(ctx, key, dest)
}

// SetQuote 写入报价缓存
func SetQuote(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, key, value, ttl)
}
