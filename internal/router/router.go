package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"DueBell/internal/handler"
	"DueBell/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Health)

	v1 := h.Group("/v1")

	// 提醒回执与状态查询
	reminders := v1.Group("/reminders")
	reminders.Use(middleware.WebhookAuthMiddleware())
	{
		reminders.POST("/callback", handler.TelegramCallback)
		reminders.POST("/:record_id/thresholds/:threshold_key/handled", handler.MarkHandled)
		reminders.GET("/:record_id", handler.GetReminders)
	}

	// 运维接口
	runs := v1.Group("/runs")
	runs.Use(middleware.WebhookAuthMiddleware())
	{
		runs.POST("", handler.TriggerRun)
	}
}
