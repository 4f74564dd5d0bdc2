package model

import "time"

// 课程/报名数据归上游核心平台所有，这里只是读侧结构。
// 时间字段上游一律以 ISO-8601 UTC（尾部 Z）传输，解析后即为瞬时值。

// ScheduledClass 一节已排的课
type ScheduledClass struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	CourseName   string    `json:"course_name"`
	RoomID       string    `json:"room_id"`
	RoomName     string    `json:"room_name"`
	TeacherNames string    `json:"teacher_names"` // 上游已聚合（"张老师, 李老师"）
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	MaxCapacity  int       `json:"max_capacity"`
	Status       string    `json:"status"`
}

// Room 教室（仅排课时取默认容量用）
type Room struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// 报名状态
const (
	EnrollmentStatusEnrolled  = "enrolled"
	EnrollmentStatusCompleted = "completed"
)

// Enrollment 一条报名记录（花名册条目）
type Enrollment struct {
	ID              string    `json:"id"`
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Status          string    `json:"status"` // enrolled | completed
	TeacherFeedback string    `json:"teacher_feedback,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
