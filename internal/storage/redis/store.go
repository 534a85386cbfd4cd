// Package redis implements the cart record store on top of a Redis
// key-value cache.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/roboshop/cart-service/internal/domain/cart"
)

// TTL is the fixed record expiry, measured from the most recent write.
// Every Put resets the clock, so an actively edited cart never expires.
const TTL = 3600 * time.Second

const keyPrefix = "cart:"

var _ cart.Store = (*Store)(nil)

// Store implements cart.Store backed by Redis. Records are stored as one
// JSON value per cart id; a single GET or SET is atomic on the Redis side,
// which is all the engine relies on.
type Store struct {
	client *goredis.Client
}

// New returns a Store that uses the given Redis client.
func New(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Get loads and deserializes the cart record for id. It returns
// cart.ErrNotFound when no record exists or it has expired.
func (s *Store) Get(ctx context.Context, id string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	return &c, nil
}

// Put serializes the full cart and overwrites the record for id,
// resetting its expiry to TTL from now.
func (s *Store) Put(ctx context.Context, id string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}
	if err := s.client.Set(ctx, key(id), data, TTL).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Delete removes the record for id and reports whether one existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis del")
	}
	return n > 0, nil
}

// Rename moves the record from fromID to toID: load, write under the new
// id with a fresh expiry, then delete the old record. The two writes are
// not transactional; a failure between them leaves the cart readable under
// both ids, which the last-write-wins model tolerates.
func (s *Store) Rename(ctx context.Context, fromID, toID string) (*cart.Cart, error) {
	c, err := s.Get(ctx, fromID)
	if err != nil {
		return nil, err
	}
	c.ID = toID

	if err := s.Put(ctx, toID, c); err != nil {
		return nil, err
	}
	if _, err := s.Delete(ctx, fromID); err != nil {
		return nil, err
	}
	return c, nil
}

// Ping reports store connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func key(id string) string {
	return keyPrefix + id
}
