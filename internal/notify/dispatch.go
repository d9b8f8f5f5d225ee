package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"DueBell/internal/model"
	"DueBell/pkg/logger"
	"DueBell/pkg/metrics"
)

// Dispatcher 把一个到期事件扇出到所有已配置渠道
// 渠道之间互不阻塞，单渠道失败不影响其他渠道尝试
type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

func (d *Dispatcher) Channels() []Channel {
	return d.channels
}

// Dispatch 渲染载荷并并行投递，返回每个渠道的结果
// 只要有一个渠道成功，整体视为成功；单次 invocation 内不重试
func (d *Dispatcher) Dispatch(ctx context.Context, event model.ReminderEvent, rec model.DeadlineRecord, today time.Time) (map[string]Outcome, bool) {
	msg := Render(event, rec, today)

	outcomes := make(map[string]Outcome, len(d.channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			start := time.Now()
			err := ch.Send(ctx, msg)
			elapsed := time.Since(start).Seconds()

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				outcomes[ch.Name()] = Outcome{Sent: false, Reason: err.Error()}
				metrics.RecordDispatchFailed(ch.Name(), elapsed)
				logger.Logger.Warn("Channel delivery failed",
					zap.String("channel", ch.Name()),
					zap.String("record_id", event.RecordID),
					zap.Int("threshold_key", event.ThresholdKey),
					zap.Error(err),
				)
				return
			}

			outcomes[ch.Name()] = Outcome{Sent: true}
			metrics.RecordDispatchSent(ch.Name(), elapsed)
		}(ch)
	}

	wg.Wait()

	anySent := false
	for _, o := range outcomes {
		if o.Sent {
			anySent = true
			break
		}
	}

	return outcomes, anySent
}

// OutcomeStrings 转成持久化用的 channel -> 字符串映射
func OutcomeStrings(outcomes map[string]Outcome) map[string]string {
	out := make(map[string]string, len(outcomes))
	for name, o := range outcomes {
		out[name] = o.String()
	}
	return out
}
