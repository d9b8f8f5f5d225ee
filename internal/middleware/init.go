package middleware

import (
	"DueBell/pkg/logger"
)

// Init 初始化所有中间件
// 目前没有需要预初始化的中间件，保留入口方便后续扩展
func Init() error {
	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
