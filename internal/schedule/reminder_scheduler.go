package schedule

// 提醒调度器：每天固定时间执行一次到期评估并把事件投放到队列

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"DueBell/internal/service"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
)

var (
	schedulerOnce sync.Once
	schedulerInst *ReminderScheduler
)

type ReminderScheduler struct {
	logger      *zap.Logger
	jobRunning  bool
	jobMu       sync.Mutex
	lastJobTime time.Time
}

func GetScheduler() *ReminderScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &ReminderScheduler{
			logger: logger.Logger,
		}
	})
	return schedulerInst
}

// RunDailyEvaluation 执行一次当日评估运行
// 进程内互斥，同一进程不会并发跑两次；跨实例互斥由运行锁保证
func (s *ReminderScheduler) RunDailyEvaluation(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Evaluation job already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	startTime := time.Now()
	s.lastJobTime = startTime

	s.logger.Info("Starting daily reminder evaluation",
		zap.Time("start_time", startTime),
	)

	summary, err := service.Reminder().Run(ctx, startTime)
	if err != nil {
		// 别的实例抢到了当日运行锁，不算失败
		if err == errors.RunAlreadyActive {
			s.logger.Info("Evaluation already running elsewhere, skipping")
			return nil
		}
		return err
	}

	s.logger.Info("Daily reminder evaluation completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("run_id", summary.RunID),
		zap.Int("published", summary.Published),
		zap.Int("suppressed", summary.Suppressed),
		zap.Int("errors", summary.Errors),
	)

	return nil
}
