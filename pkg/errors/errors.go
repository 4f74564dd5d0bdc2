package errors

import "fmt"

// 错误分类：
//   - ValidationError: 提交前客户端侧即可判定的参数问题，不发任何上游请求
//   - StateError:      当前生命周期状态下不允许的操作（如已结束课程点名）
//   - RemoteError:     上游核心平台返回非 2xx 或网络失败，原样透出服务端消息

// ── ValidationError ──

// 校验错误码
const (
	CodeMissingCourse  = "missing_course"
	CodeMissingRoom    = "missing_room"
	CodeNoTeacher      = "no_teacher"
	CodeBadTimeWindow  = "bad_time_window"
	CodeRangeTooLarge  = "range_too_large"
	CodeBadTermination = "bad_termination"
)

// ValidationError 排课草稿校验失败
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeMissingCourse:
		return "请选择课程"
	case CodeMissingRoom:
		return "请选择教室"
	case CodeNoTeacher:
		return "请至少选择一位老师"
	case CodeBadTimeWindow:
		return "结束时间必须晚于开始时间"
	case CodeRangeTooLarge:
		return "重复范围无效：无可排课次或超出单次提交上限"
	case CodeBadTermination:
		return "重复排课必须且只能指定一种结束方式"
	}
	return fmt.Sprintf("参数校验失败: %s", e.Code)
}

// NewValidation 创建校验错误
func NewValidation(code string) *ValidationError {
	return &ValidationError{Code: code}
}

// ── StateError ──

// 状态错误码
const (
	CodeClassLocked      = "class_locked"
	CodeAlreadyCompleted = "already_completed"
	CodeCheckinInFlight  = "checkin_in_flight"
)

// StateError 当前状态下操作被拒绝
type StateError struct {
	Code string
}

func (e *StateError) Error() string {
	switch e.Code {
	case CodeClassLocked:
		return "课程已结束，花名册已锁定"
	case CodeAlreadyCompleted:
		return "该学员已完成点名"
	case CodeCheckinInFlight:
		return "该学员点名请求处理中，请勿重复提交"
	}
	return fmt.Sprintf("当前状态不允许此操作: %s", e.Code)
}

// NewState 创建状态错误
func NewState(code string) *StateError {
	return &StateError{Code: code}
}

// ── RemoteError ──

// RemoteError 上游调用失败；StatusCode 为 0 表示网络层失败
type RemoteError struct {
	StatusCode int
	Message    string // 上游返回的原始消息，可能为空
	Err        error  // 仅网络失败时非 nil
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("上游请求失败: %v", e.Err)
	}
	return fmt.Sprintf("上游返回 HTTP %d", e.StatusCode)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// UserMessage 给终端用户看的消息：优先上游原话，否则通用提示
func (e *RemoteError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "操作失败，请重试"
}
