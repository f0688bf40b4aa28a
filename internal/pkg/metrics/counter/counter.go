package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/cache"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
)

const (
	albumViewsKey    = "album:counters:views"
	webhookCountsKey = "webhook:counters:results"
)

// AddAlbumView increments the pending view counter for a shared album in Redis.
// Counters are flushed to the albums table in batches by the background worker.
func AddAlbumView(albumID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(albumID), 10)
	return cache.GetClient().HIncrBy(ctx, albumViewsKey, field, 1).Err()
}

// AddWebhookResult increments the running counter for a webhook outcome
// ("success" or "failed"). These counters stay in Redis and feed the stats
// endpoint; the webhook_logs table remains the durable audit trail.
func AddWebhookResult(status string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookCountsKey, status, 1).Err()
}

// GetWebhookResults returns the accumulated webhook outcome counters.
func GetWebhookResults() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, webhookCountsKey).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(data))
	for status, count := range data {
		if n, err := strconv.ParseInt(count, 10, 64); err == nil {
			result[status] = n
		}
	}
	return result, nil
}

// FlushAll flushes pending album view counters to the database.
func FlushAll() error {
	return flushHashToTable(albumViewsKey, "albums", "view_count")
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func flushHashToTable(redisKey, table, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		id  uint64
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: id, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	// UPDATE albums SET view_count = view_count + CASE id WHEN ? THEN ? ... END WHERE id IN (...)
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id ")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")

	db := database.GetDB()
	return db.Exec(builder.String(), args...).Error
}
