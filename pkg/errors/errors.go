package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 配置/凭证类错误，invocation 级致命。
var (
	SecretUnavailable = Definition{Code: "SECRET_UNAVAILABLE", Message: "Channel secret unavailable"}
	NoChannelEnabled  = Definition{Code: "NO_CHANNEL_ENABLED", Message: "No notification channel enabled"}
	ScheduleInvalid   = Definition{Code: "SCHEDULE_INVALID", Message: "Advance-day schedule invalid"}
)

// 记录读取类错误，按行隔离。
var (
	RecordInvalid  = Definition{Code: "RECORD_INVALID", Message: "Deadline record invalid"}
	RecordNotFound = Definition{Code: "RECORD_NOT_FOUND", Message: "Deadline record not found"}
)

// 投递与状态存储类错误。
var (
	ChannelFailed         = Definition{Code: "CHANNEL_FAILED", Message: "Notification channel delivery failed"}
	AllChannelsFailed     = Definition{Code: "ALL_CHANNELS_FAILED", Message: "All notification channels failed"}
	StateStoreUnavailable = Definition{Code: "STATE_STORE_UNAVAILABLE", Message: "Reminder state store unavailable"}
	RunAlreadyActive      = Definition{Code: "RUN_ALREADY_ACTIVE", Message: "Reminder run already active"}
)

// Action Handler 错误。
var (
	ReminderNotFound = Definition{Code: "REMINDER_NOT_FOUND", Message: "Reminder status not found"}
	CallbackInvalid  = Definition{Code: "CALLBACK_INVALID", Message: "Callback payload invalid"}
	Unauthorized     = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	SecretUnavailable.Code:     SecretUnavailable,
	NoChannelEnabled.Code:      NoChannelEnabled,
	ScheduleInvalid.Code:       ScheduleInvalid,
	RecordInvalid.Code:         RecordInvalid,
	RecordNotFound.Code:        RecordNotFound,
	ChannelFailed.Code:         ChannelFailed,
	AllChannelsFailed.Code:     AllChannelsFailed,
	StateStoreUnavailable.Code: StateStoreUnavailable,
	RunAlreadyActive.Code:      RunAlreadyActive,
	ReminderNotFound.Code:      ReminderNotFound,
	CallbackInvalid.Code:       CallbackInvalid,
	Unauthorized.Code:          Unauthorized,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError 表示消费者应当 ack 并跳过该消息（幂等重复等场景）。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

// IsSkipMessageError 判断错误链中是否包含 SkipMessageError。
func IsSkipMessageError(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}
