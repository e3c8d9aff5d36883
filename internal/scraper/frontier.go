package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/grocerscan/tesco_scraper/config"
	"github.com/redis/go-redis/v9"
)

// ErrFrontierEmpty signals an empty pending queue, not a failure.
var ErrFrontierEmpty = errors.New("frontier is empty")

// maxRequestRetries is the per-descriptor retry budget. A descriptor that
// fails more often is parked on the failed queue and its lineage beyond that
// point is lost; sibling lineages are unaffected.
const maxRequestRetries = 3

// RequestFrontier is the work queue: it holds pending request descriptors,
// guarantees at-most-once delivery per unique key and drives retries on
// failure. Lineage state lives entirely inside the descriptors it carries.
type RequestFrontier interface {
	// Push enqueues a descriptor unless its unique key was seen before.
	// Returns false when the descriptor was absorbed as a duplicate.
	Push(ctx context.Context, desc *RequestDescriptor) (bool, error)
	NextBatch(ctx context.Context, workerID string, count int) ([]*RequestDescriptor, error)
	Done(ctx context.Context, desc *RequestDescriptor, workerID string) error
	// Fail requeues the same descriptor while its retry budget lasts.
	// Returns true when it was requeued, false when abandoned.
	Fail(ctx context.Context, desc *RequestDescriptor, workerID, reason string) (bool, error)
	Stats(ctx context.Context) (FrontierStats, error)
	Close() error
}

type FrontierStats struct {
	Total   int64
	Handled int64
	Pending int64
	Failed  int64
}

const (
	pendingQueue    = "scraper:pending"
	failedQueue     = "scraper:failed"
	processingQueue = "scraper:processing:"
	seenSet         = "scraper:seen"
	handledCounter  = "scraper:handled"
)

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("error pinging the redis : %w", err)
	}
	return client, nil
}

// requestFrontier is the redis-backed frontier: a pending list, a processing
// list per worker (so in-flight work survives a crash), a failed list, and a
// set of seen unique keys. SADD is the dedup index's atomic insert-if-absent;
// LMOVE is the claim's atomic pop.
type requestFrontier struct {
	redisClient *redis.Client
}

func NewRequestFrontier(redisClient *redis.Client) RequestFrontier {
	return &requestFrontier{redisClient: redisClient}
}

func (f *requestFrontier) Push(ctx context.Context, desc *RequestDescriptor) (bool, error) {
	added, err := f.redisClient.SAdd(ctx, seenSet, desc.UniqueKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to update the dedup index: %w", err)
	}
	if added == 0 {
		return false, nil
	}
	data, err := json.Marshal(desc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal request descriptor: %w", err)
	}
	if err = f.redisClient.LPush(ctx, pendingQueue, data).Err(); err != nil {
		return false, fmt.Errorf("failed to push request to pending queue: %w", err)
	}
	return true, nil
}

func (f *requestFrontier) NextBatch(ctx context.Context, workerID string, count int) ([]*RequestDescriptor, error) {
	if count <= 0 {
		return nil, errors.New("invalid batch size")
	}
	processingKey := processingQueue + workerID
	processingItems, err := f.redisClient.LRange(ctx, processingKey, 0, int64(count-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read processing queue: %w", err)
	}
	var descriptors []*RequestDescriptor

	if len(processingItems) > 0 {
		log.Printf("found %d requests in processing", len(processingItems))
		for _, itemStr := range processingItems {
			var desc RequestDescriptor
			if err := json.Unmarshal([]byte(itemStr), &desc); err != nil {
				log.Printf("failed to unmarshal request from processing queue: %s : skipping", itemStr)
				continue
			}
			descriptors = append(descriptors, &desc)
		}
		return descriptors, nil
	}

	// Claim items one at a time: each LMOVE atomically pops the pending tail
	// into this worker's processing list, so concurrent workers can never read
	// the same item and nothing is ever trimmed unread.
	for len(descriptors) < count {
		itemStr, err := f.redisClient.LMove(ctx, pendingQueue, processingKey, "RIGHT", "LEFT").Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim request from pending queue: %w", err)
		}
		var desc RequestDescriptor
		if err := json.Unmarshal([]byte(itemStr), &desc); err != nil {
			log.Printf("failed to unmarshal request %s : skipping", itemStr)
			f.redisClient.LRem(ctx, processingKey, 1, itemStr)
			continue
		}
		descriptors = append(descriptors, &desc)
	}
	if len(descriptors) == 0 {
		return nil, ErrFrontierEmpty
	}

	return descriptors, nil
}

func (f *requestFrontier) Done(ctx context.Context, desc *RequestDescriptor, workerID string) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal the descriptor : %v", err)
	}
	pipe := f.redisClient.TxPipeline()
	pipe.LRem(ctx, processingQueue+workerID, 0, data)
	pipe.Incr(ctx, handledCounter)
	_, err = pipe.Exec(ctx)
	return err
}

func (f *requestFrontier) Fail(ctx context.Context, desc *RequestDescriptor, workerID, reason string) (bool, error) {
	// Marshal before touching the retry counter so LRem matches the bytes
	// sitting in the processing list.
	oldData, err := json.Marshal(desc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal descriptor for removal: %w", err)
	}

	if desc.Retries < maxRequestRetries {
		retry := *desc
		retry.Retries++
		retryData, err := json.Marshal(&retry)
		if err != nil {
			return false, fmt.Errorf("failed to marshal retry descriptor: %w", err)
		}
		pipe := f.redisClient.TxPipeline()
		pipe.LRem(ctx, processingQueue+workerID, 0, oldData)
		pipe.LPush(ctx, pendingQueue, retryData)
		if _, err = pipe.Exec(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	failedItem := struct {
		Descriptor RequestDescriptor `json:"descriptor"`
		Reason     string            `json:"reason"`
	}{Descriptor: *desc, Reason: reason}

	jsonData, err := json.Marshal(failedItem)
	if err != nil {
		return false, fmt.Errorf("failed to marshal failed item: %w", err)
	}

	pipe := f.redisClient.TxPipeline()
	pipe.LRem(ctx, processingQueue+workerID, 0, oldData)
	pipe.LPush(ctx, failedQueue, jsonData)
	_, err = pipe.Exec(ctx)
	return false, err
}

func (f *requestFrontier) Stats(ctx context.Context) (FrontierStats, error) {
	var stats FrontierStats
	total, err := f.redisClient.SCard(ctx, seenSet).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read dedup index size: %w", err)
	}
	handled, err := f.redisClient.Get(ctx, handledCounter).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return stats, fmt.Errorf("failed to read handled counter: %w", err)
	}
	pending, err := f.redisClient.LLen(ctx, pendingQueue).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read pending queue size: %w", err)
	}
	failed, err := f.redisClient.LLen(ctx, failedQueue).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read failed queue size: %w", err)
	}
	stats.Total = total
	stats.Handled = handled
	stats.Pending = pending
	stats.Failed = failed
	return stats, nil
}

func (f *requestFrontier) Close() error {
	if err := f.redisClient.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}
