package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"DueBell/internal/notify"
	"DueBell/internal/service"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/pkg/response"
	"DueBell/pkg/telegram"
)

// TelegramCallback 接收 Telegram bot webhook 的按钮回调
// POST /v1/reminders/callback
func TelegramCallback(ctx context.Context, c *app.RequestContext) {
	var update telegram.Update
	if err := c.Bind(&update); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	// 非按钮回调的更新（普通消息等）直接确认，避免 Telegram 反复重投
	if update.CallbackQuery == nil {
		response.Success(ctx, c, map[string]interface{}{"ignored": true})
		return
	}

	recordID, thresholdKey, ok := notify.ParseCallbackData(update.CallbackQuery.Data)
	if !ok {
		logger.Logger.Warn("Received malformed callback data",
			zap.String("data", update.CallbackQuery.Data),
		)
		response.Error(ctx, c, errors.CallbackInvalid)
		return
	}

	st, err := service.Action().MarkHandled(ctx, recordID, thresholdKey)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// 回应按钮点击让客户端停止转圈，失败不影响主流程
	service.AcknowledgeCallback(ctx, update.CallbackQuery.ID, "Marked as handled")

	response.Success(ctx, c, st)
}

// MarkHandled 显式标记某条提醒为已处理
// POST /v1/reminders/:record_id/thresholds/:threshold_key/handled
func MarkHandled(ctx context.Context, c *app.RequestContext) {
	recordID := c.Param("record_id")
	thresholdKey, err := strconv.Atoi(c.Param("threshold_key"))
	if err != nil || recordID == "" {
		response.Error(ctx, c, errors.CallbackInvalid)
		return
	}

	st, err := service.Action().MarkHandled(ctx, recordID, thresholdKey)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, st)
}

// GetReminders 查询某条记录的全部提醒状态
// GET /v1/reminders/:record_id
func GetReminders(ctx context.Context, c *app.RequestContext) {
	recordID := c.Param("record_id")
	if recordID == "" {
		response.Error(ctx, c, errors.RecordInvalid)
		return
	}

	statuses, err := service.Action().GetReminders(ctx, recordID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, statuses)
}

// TriggerRun 手工触发一次评估运行（运维用）
// POST /v1/runs
func TriggerRun(ctx context.Context, c *app.RequestContext) {
	summary, err := service.Reminder().Run(ctx, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, summary)
}

// Health 存活探针
// GET /healthz
func Health(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]interface{}{"status": "ok"})
}
