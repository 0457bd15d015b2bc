package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"musicschool_go/database"
	"musicschool_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// LogFlushService moves cached activity logs from Redis to MySQL. Entries
// sit in the cache for up to an hour before the flush picks them up, which
// keeps audit writes off the request path.
type LogFlushService struct {
	redisClient *redis.Client
}

// NewLogFlushService creates a new service instance.
func NewLogFlushService() *LogFlushService {
	return &LogFlushService{
		redisClient: database.GetRedisClient(),
	}
}

// FlushCachedLogs drains queued log entries older than an hour into the
// database. Each entry is deleted from Redis only after the row is saved,
// so a mid-flush crash loses nothing.
func (lfs *LogFlushService) FlushCachedLogs() error {
	if lfs.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoff := time.Now().Add(-1 * time.Hour)

	dueKeys, err := lfs.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoff.Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read log queue: %v", err)
	}

	var processedCount int
	var errorCount int

	for _, logKey := range dueKeys {
		logData, err := lfs.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get log data for key: %s", logKey)
				errorCount++
				continue
			}
			// Value expired; drop the dangling queue entry.
			lfs.redisClient.ZRem(ctx, "logs:queue", logKey)
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &entry); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", logKey)
			errorCount++
			continue
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Errorf("Failed to save cached log to database: %s", logKey)
			errorCount++
			continue
		}

		pipeline := lfs.redisClient.Pipeline()
		pipeline.Del(ctx, logKey)
		pipeline.ZRem(ctx, "logs:queue", logKey)
		if _, err := pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove flushed log from cache: %s", logKey)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d cached logs to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// StartScheduler flushes once at boot and then hourly in the background.
func (lfs *LogFlushService) StartScheduler() {
	go func() {
		if err := lfs.FlushCachedLogs(); err != nil {
			logrus.WithError(err).Warn("initial log flush failed")
		}

		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := lfs.FlushCachedLogs(); err != nil {
				logrus.WithError(err).Warn("periodic log flush failed")
			}
		}
	}()
}
