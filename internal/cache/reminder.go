package cache

import (
	"context"
	"fmt"
	"time"

	"DueBell/storage/redis"
)

const (
	// 当日已投放到队列的事件标记，防止同日重复发布
	eventPublishedPrefix = "reminder:published"
	// 消费侧消息级幂等标记
	messageProcessedPrefix = "message:processed"
	// Orchestrator 单日运行锁
	runLockPrefix = "run:lock"

	publishedTTL = 24 * time.Hour
	processedTTL = 48 * time.Hour
	runLockTTL   = 10 * time.Minute
)

func eventKey(date, recordID string, thresholdKey int) string {
	return redis.Key(eventPublishedPrefix, date, recordID, fmt.Sprintf("%d", thresholdKey))
}

// IsEventPublished 检查 (record, threshold) 当日是否已投放到队列
func IsEventPublished(ctx context.Context, date, recordID string, thresholdKey int) (bool, error) {
	result, err := redis.Client().Exists(ctx, eventKey(date, recordID, thresholdKey)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event published status: %w", err)
	}
	return result > 0, nil
}

// MarkEventPublished 标记事件当日已投放
func MarkEventPublished(ctx context.Context, date, recordID string, thresholdKey int) error {
	return redis.Client().Set(ctx, eventKey(date, recordID, thresholdKey), "1", publishedTTL).Err()
}

// UnmarkEventPublished 清除投放标记（投递彻底失败时调用，允许同日重新入队）
func UnmarkEventPublished(ctx context.Context, date, recordID string, thresholdKey int) error {
	return redis.Client().Del(ctx, eventKey(date, recordID, thresholdKey)).Err()
}

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（SETNX）
// 返回 true 表示首次处理，false 表示重复消息或正在处理
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing 取消消息处理标记（处理失败时调用，允许重试）
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 标记消息已处理（处理成功时调用，延长 TTL）
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}

// AcquireRunLock 抢占当日运行锁，多实例部署时只允许一个 Orchestrator 在跑
func AcquireRunLock(ctx context.Context, date string) (bool, error) {
	key := redis.Key(runLockPrefix, date)

	ok, err := redis.Client().SetNX(ctx, key, "running", runLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// ReleaseRunLock 释放运行锁
func ReleaseRunLock(ctx context.Context, date string) error {
	key := redis.Key(runLockPrefix, date)
	return redis.Client().Del(ctx, key).Err()
}
