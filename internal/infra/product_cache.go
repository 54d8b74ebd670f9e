package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nretrorsum/work-test/internal/model"
)

const (
	productKeyPrefix = "product:"
	// defaultFenceTTL bounds how long a fresh Set is refused after an
	// Invalidate. It must exceed the slowest store read that can race a write.
	defaultFenceTTL = 5 * time.Second
)

// setUnlessFenced writes KEYS[1] unless the invalidation fence KEYS[2]
// exists. ARGV[1] is the payload and ARGV[2] the TTL in milliseconds.
var setUnlessFenced = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// cachedProduct is the JSON shape stored in Redis.
type cachedProduct struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductCache is a Redis read-through cache of catalog rows keyed by id.
// Invalidate leaves a short-lived fence so that a reader which loaded the row
// before a write cannot put the old value back afterwards.
type ProductCache struct {
	rdb      *redis.Client
	ttl      time.Duration
	fenceTTL time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl, fenceTTL: defaultFenceTTL}
}

func productKey(id uuid.UUID) string { return productKeyPrefix + id.String() }

func fenceKey(id uuid.UUID) string { return productKeyPrefix + id.String() + ":fence" }

// Get returns (nil, nil) on a cache miss.
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cp cachedProduct
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, err
	}
	return &model.Product{
		ID: cp.ID, Name: cp.Name, Price: cp.Price, Quantity: cp.Quantity, CreatedAt: cp.CreatedAt,
	}, nil
}

func (c *ProductCache) Set(ctx context.Context, p *model.Product) error {
	b, err := json.Marshal(cachedProduct{
		ID: p.ID, Name: p.Name, Price: p.Price, Quantity: p.Quantity, CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return err
	}
	keys := []string{productKey(p.ID), fenceKey(p.ID)}
	return setUnlessFenced.Run(ctx, c.rdb, keys, b, c.ttl.Milliseconds()).Err()
}

// Invalidate drops the cached row and fences the key against stale refills.
func (c *ProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, productKey(id))
		pipe.Set(ctx, fenceKey(id), 1, c.fenceTTL)
		return nil
	})
	return err
}
