// Command cart-ingest bulk-loads cart records from gzip-compressed
// JSON-lines dump shards into the Redis cart store. It is used to restore
// session carts after cache migrations and to seed load-test environments.
//
// Each line of a shard is one cart record with an "id" field. Derived
// fields (subtotals, total, tax) are recomputed on ingest, so stale dumps
// cannot violate the cart invariants. When the same cart id appears in
// more than one shard the last written record wins, matching the store's
// usual last-write-wins behaviour; cross-shard duplicates are detected via
// bloom filters and reported so operators can check their dump tooling.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/roboshop/cart-service/internal/domain/cart"
	redisstore "github.com/roboshop/cart-service/internal/storage/redis"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir  string
		redisURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing cartdump*.gz shards")
	flag.StringVar(&redisURL, "redis-url", "", "Redis connection URL (or REDIS_URL env)")
	flag.Parse()

	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if redisURL == "" {
		slog.Error("redis URL is required: set --redis-url or REDIS_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, redisURL); err != nil {
		slog.Error("cart ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("cart ingest completed successfully")
}

func run(ctx context.Context, dataDir, redisURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "cartdump*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob shards")
	}
	if len(files) == 0 {
		return errors.Errorf("no cartdump*.gz shards in %s", dataDir)
	}

	// Pass 1: build per-shard bloom filters of cart ids, concurrently.
	slog.Info("pass 1: scanning shards for cart ids", slog.Int("files", len(files)))

	filters, err := buildIDFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build id filters")
	}

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return errors.Wrap(err, "parse redis URL")
	}
	client := goredis.NewClient(opts)
	defer func() { _ = client.Close() }()

	store := redisstore.New(client)
	if err := store.Ping(ctx); err != nil {
		return errors.Wrap(err, "connect to redis")
	}

	// Pass 2: load records, reporting ids also seen in earlier shards.
	slog.Info("pass 2: loading records")

	var total, duplicates uint64
	for i, f := range files {
		loaded, dups, err := loadShard(ctx, store, i, f, filters)
		if err != nil {
			return errors.Wrapf(err, "load shard %s", f)
		}
		total += loaded
		duplicates += dups
	}

	slog.Info("all shards loaded",
		slog.Uint64("records", total),
		slog.Uint64("cross_shard_duplicates", duplicates),
	)
	return nil
}

// buildIDFilters creates one bloom filter of cart ids per shard, concurrently.
func buildIDFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForShard(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func buildFilterForShard(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(line []byte) error {
			id, err := recordID(line)
			if err != nil {
				return err
			}
			filter.AddString(id)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress", slog.Int("file", idx+1), slog.Uint64("records", count))
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "scan shard %d", idx+1)
		}

		slog.Info("pass 1 complete", slog.Int("file", idx+1), slog.Uint64("records", count))
		filters[idx] = filter
		return nil
	}
}

// loadShard streams one shard into the store. Shards load in file order so
// the last shard containing an id wins deterministically.
func loadShard(
	ctx context.Context,
	store *redisstore.Store,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
) (loaded, duplicates uint64, err error) {
	err = streamGzFile(ctx, path, func(line []byte) error {
		var c cart.Cart
		if err := json.Unmarshal(line, &c); err != nil {
			return errors.Wrap(err, "unmarshal record")
		}
		if c.ID == "" {
			return errors.New("record has no id")
		}

		// Earlier shards may already have written this id.
		for j := 0; j < idx; j++ {
			if filters[j].TestString(c.ID) {
				duplicates++
				slog.Warn("cart id seen in earlier shard, overwriting",
					slog.String("id", c.ID),
					slog.Int("file", idx+1),
				)
				break
			}
		}

		normalize(&c)
		if err := store.Put(ctx, c.ID, &c); err != nil {
			return err
		}

		loaded++
		if loaded%progressEvery == 0 {
			slog.Info("pass 2 progress", slog.Int("file", idx+1), slog.Uint64("records", loaded))
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	slog.Info("pass 2 complete", slog.Int("file", idx+1), slog.Uint64("records", loaded))
	return loaded, duplicates, nil
}

// normalize recomputes all derived fields so dumped records cannot carry
// inconsistent subtotals or totals into the store.
func normalize(c *cart.Cart) {
	for i := range c.Items {
		qty := c.Items[i].Qty
		if c.Items[i].SKU == cart.ShipSKU {
			qty = 1
			c.Items[i].Qty = 1
		}
		c.Items[i].Subtotal = cart.Subtotal(c.Items[i].Price, qty)
	}
	c.Total = cart.Total(c.Items)
	c.Tax = cart.Tax(c.Total)
}

// recordID extracts just the id field without decoding the whole record.
func recordID(line []byte) (string, error) {
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(line, &rec); err != nil {
		return "", errors.Wrap(err, "unmarshal record id")
	}
	if rec.ID == "" {
		return "", errors.New("record has no id")
	}
	return rec.ID, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each
// non-empty line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
