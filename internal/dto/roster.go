package dto

// ── 花名册（点名）模块 DTO ──

// CheckinRequest 点名请求
type CheckinRequest struct {
	TeacherFeedback string `json:"teacher_feedback" binding:"omitempty,max=500"`
}

// EnrollmentResponse 花名册条目响应
type EnrollmentResponse struct {
	ID              string `json:"id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	Status          string `json:"status"` // enrolled | completed
	TeacherFeedback string `json:"teacher_feedback,omitempty"`
}

// RosterResponse 某节课的完整花名册
// arrived_count 每次读取重新统计，不缓存；
// locked 为 true 时前端必须以只读展示，不渲染点名入口。
type RosterResponse struct {
	ClassID      string               `json:"class_id"`
	Phase        string               `json:"phase"` // upcoming | in_progress | ended
	Locked       bool                 `json:"locked"`
	TotalCount   int                  `json:"total_count"`
	ArrivedCount int                  `json:"arrived_count"`
	Enrollments  []EnrollmentResponse `json:"enrollments"`
}
