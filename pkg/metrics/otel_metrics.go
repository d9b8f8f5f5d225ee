package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 提醒投递相关指标集合
type OTelMetrics struct {
	EventsDueTotal       metric.Int64Counter
	EventsSuppressed     metric.Int64Counter
	DispatchSentTotal    metric.Int64Counter
	DispatchFailedTotal  metric.Int64Counter
	DispatchDuration     metric.Float64Histogram
	RowsSkippedTotal     metric.Int64Counter
	RemindersHandled     metric.Int64Counter
}

var (
	metricsInst *OTelMetrics
	metricsOnce sync.Once
	meter       = otel.Meter("duebell")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metricsOnce.Do(func() {
		m := &OTelMetrics{}

		m.EventsDueTotal, err = meter.Int64Counter(
			"reminder_events_due_total",
			metric.WithDescription("Total number of reminder events evaluated as due"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			return
		}

		m.EventsSuppressed, err = meter.Int64Counter(
			"reminder_events_suppressed_total",
			metric.WithDescription("Total number of events suppressed by dedupe policy"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			return
		}

		m.DispatchSentTotal, err = meter.Int64Counter(
			"reminder_dispatch_sent_total",
			metric.WithDescription("Total number of successful channel deliveries"),
			metric.WithUnit("{delivery}"),
		)
		if err != nil {
			return
		}

		m.DispatchFailedTotal, err = meter.Int64Counter(
			"reminder_dispatch_failed_total",
			metric.WithDescription("Total number of failed channel deliveries"),
			metric.WithUnit("{delivery}"),
		)
		if err != nil {
			return
		}

		m.DispatchDuration, err = meter.Float64Histogram(
			"reminder_dispatch_duration_seconds",
			metric.WithDescription("Time spent delivering one event through one channel"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return
		}

		m.RowsSkippedTotal, err = meter.Int64Counter(
			"record_rows_skipped_total",
			metric.WithDescription("Total number of malformed record rows skipped"),
			metric.WithUnit("{row}"),
		)
		if err != nil {
			return
		}

		m.RemindersHandled, err = meter.Int64Counter(
			"reminders_handled_total",
			metric.WithDescription("Total number of reminders marked handled"),
			metric.WithUnit("{reminder}"),
		)
		if err != nil {
			return
		}

		metricsInst = m
	})

	return err
}

func GetMetrics() *OTelMetrics {
	return metricsInst
}

// RecordEventDue 记录一次判定为到期的事件
func RecordEventDue(class string) {
	if m := GetMetrics(); m != nil {
		m.EventsDueTotal.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("class", class)))
	}
}

// RecordEventSuppressed 记录一次被去重策略拦截的事件
func RecordEventSuppressed(class string) {
	if m := GetMetrics(); m != nil {
		m.EventsSuppressed.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("class", class)))
	}
}

// RecordDispatchSent 记录单渠道投递成功
func RecordDispatchSent(channel string, duration float64) {
	if m := GetMetrics(); m != nil {
		ctx := context.Background()
		attrs := metric.WithAttributes(attribute.String("channel", channel))
		m.DispatchSentTotal.Add(ctx, 1, attrs)
		m.DispatchDuration.Record(ctx, duration, attrs)
	}
}

// RecordDispatchFailed 记录单渠道投递失败
func RecordDispatchFailed(channel string, duration float64) {
	if m := GetMetrics(); m != nil {
		ctx := context.Background()
		attrs := metric.WithAttributes(attribute.String("channel", channel))
		m.DispatchFailedTotal.Add(ctx, 1, attrs)
		m.DispatchDuration.Record(ctx, duration, attrs)
	}
}

// RecordRowSkipped 记录一行被跳过的脏数据
func RecordRowSkipped() {
	if m := GetMetrics(); m != nil {
		m.RowsSkippedTotal.Add(context.Background(), 1)
	}
}

// RecordReminderHandled 记录一次 mark-handled
func RecordReminderHandled() {
	if m := GetMetrics(); m != nil {
		m.RemindersHandled.Add(context.Background(), 1)
	}
}
