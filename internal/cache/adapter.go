package cache

import (
	"context"
)

// RedisMarks / RedisRunLock 把包级函数包成可注入的实现，service 层依赖接口便于测试

type RedisMarks struct{}

func (RedisMarks) IsPublished(ctx context.Context, date, recordID string, thresholdKey int) (bool, error) {
	return IsEventPublished(ctx, date, recordID, thresholdKey)
}

func (RedisMarks) MarkPublished(ctx context.Context, date, recordID string, thresholdKey int) error {
	return MarkEventPublished(ctx, date, recordID, thresholdKey)
}

func (RedisMarks) UnmarkPublished(ctx context.Context, date, recordID string, thresholdKey int) error {
	return UnmarkEventPublished(ctx, date, recordID, thresholdKey)
}

type RedisRunLock struct{}

func (RedisRunLock) Acquire(ctx context.Context, date string) (bool, error) {
	return AcquireRunLock(ctx, date)
}

func (RedisRunLock) Release(ctx context.Context, date string) error {
	return ReleaseRunLock(ctx, date)
}
