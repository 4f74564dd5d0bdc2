package dto

import "time"

// ── 排课模块 DTO ──

// ScheduleDraftRequest 批量排课草稿
// first_end 由前端按课程默认时长预填，提交时必填；
// max_capacity 为 0 时服务端取教室默认座位数；
// recurrence != none 时 repeat_count 与 until_date 必须且只能给一个。
type ScheduleDraftRequest struct {
	// course_id/room_id 缺失由服务层给出 missing_course/missing_room 业务码，
	// 绑定层只校验格式，不做必填
	CourseID    string    `json:"course_id"    binding:"omitempty,uuid"`
	CourseName  string    `json:"course_name"  binding:"omitempty,max=100"` // 展示快照，随流水落库
	RoomID      string    `json:"room_id"      binding:"omitempty,uuid"`
	RoomName    string    `json:"room_name"    binding:"omitempty,max=100"`
	TeacherIDs  []string  `json:"teacher_ids"  binding:"omitempty,dive,uuid"`
	MaxCapacity int       `json:"max_capacity" binding:"omitempty,min=1"`
	FirstStart  time.Time `json:"first_start"  binding:"required"`
	FirstEnd    time.Time `json:"first_end"    binding:"required"`
	Recurrence  string    `json:"recurrence"   binding:"omitempty,oneof=none weekly biweekly"`
	RepeatCount int       `json:"repeat_count" binding:"omitempty,min=2,max=50"`
	UntilDate   string    `json:"until_date"   binding:"omitempty,datetime=2006-01-02"` // 本地日期，含当天
}

// PreviewResponse 课次预览响应（向导确认步，不触发上游调用）
type PreviewResponse struct {
	OccurrenceCount int      `json:"occurrence_count"`
	Occurrences     []string `json:"occurrences"` // RFC3339 UTC
}

// SubmitResponse 批量排课提交结果
type SubmitResponse struct {
	SubmissionID string   `json:"submission_id"`
	CreatedCount int      `json:"created_count"`
	Occurrences  []string `json:"occurrences"` // RFC3339 UTC
}

// ClassResponse 课程列表/详情响应
type ClassResponse struct {
	ID           string `json:"id"`
	CourseName   string `json:"course_name"`
	RoomName     string `json:"room_name"`
	TeacherNames string `json:"teacher_names"`
	StartTime    string `json:"start_time"` // RFC3339 UTC
	EndTime      string `json:"end_time"`   // RFC3339 UTC
	MaxCapacity  int    `json:"max_capacity"`
	Phase        string `json:"phase"` // upcoming | in_progress | ended
}

// SubmissionResponse 提交流水响应
type SubmissionResponse struct {
	SubmissionID   string `json:"submission_id"`
	CourseID       string `json:"course_id"`
	RoomID         string `json:"room_id"`
	RecurrenceType string `json:"recurrence_type"`
	RepeatCount    int    `json:"repeat_count"`
	Status         string `json:"status"`
	CreatedCount   int    `json:"created_count"`
	FailureReason  string `json:"failure_reason,omitempty"`
	FirstStart     string `json:"first_start"` // RFC3339 UTC
	CreatedAt      string `json:"created_at"`  // RFC3339 UTC
}
