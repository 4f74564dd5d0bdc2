package model

import (
	"strings"
	"time"
)

// 提交流水状态
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSucceeded = "succeeded"
	SubmissionStatusFailed    = "failed"
)

// ScheduleSubmission 排课提交流水 — 对应 schedule_submissions
// 本服务唯一的本地持久化数据：幂等键 + 草稿快照 + 结果。
// 凭快照可重放课次生成器，用于日历导出与重试排查。
type ScheduleSubmission struct {
	SubmissionID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	IdempotencyKey string    `gorm:"type:varchar(64);not null;uniqueIndex"          json:"idempotency_key"`
	OperatorID     string    `gorm:"type:uuid;not null"                             json:"operator_id"`
	BaseID         string    `gorm:"type:uuid;not null"                             json:"base_id"`
	CourseID       string    `gorm:"type:uuid;not null"                             json:"course_id"`
	CourseName     string    `gorm:"type:varchar(100)"                              json:"course_name,omitempty"` // 展示快照，日历导出用
	RoomID         string    `gorm:"type:uuid;not null"                             json:"room_id"`
	RoomName       string    `gorm:"type:varchar(100)"                              json:"room_name,omitempty"`
	TeacherIDs     string    `gorm:"type:text;not null"                             json:"teacher_ids"` // 逗号分隔，已去重排序
	MaxCapacity    int       `gorm:"not null"                                       json:"max_capacity"`
	FirstStart     time.Time `gorm:"not null"                                       json:"first_start"`
	FirstEnd       time.Time `gorm:"not null"                                       json:"first_end"`
	RecurrenceType string    `gorm:"type:varchar(10);not null"                      json:"recurrence_type"` // none | weekly | biweekly
	RepeatCount    int       `gorm:"not null"                                       json:"repeat_count"`
	Status         string    `gorm:"type:varchar(10);not null;default:'pending'"    json:"status"` // pending | succeeded | failed
	CreatedCount   int       `gorm:"not null;default:0"                             json:"created_count"`
	FailureReason  string    `gorm:"type:varchar(500)"                              json:"failure_reason,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (ScheduleSubmission) TableName() string { return "schedule_submissions" }

// TeacherIDList 拆出教师 ID 列表
func (s *ScheduleSubmission) TeacherIDList() []string {
	if s.TeacherIDs == "" {
		return nil
	}
	return strings.Split(s.TeacherIDs, ",")
}

// SetTeacherIDs 存入教师 ID 列表
func (s *ScheduleSubmission) SetTeacherIDs(ids []string) {
	s.TeacherIDs = strings.Join(ids, ",")
}
