package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/SHILUNKA/edusaas-sub001/internal/model"
)

// CreateClassesRequest 批量排课上游请求体
// start/end 为首节课时间；后续课次由上游按 recurrence_type × repeat_count 步进生成
type CreateClassesRequest struct {
	CourseID       string    `json:"course_id"`
	TeacherIDs     []string  `json:"teacher_ids"`
	RoomID         string    `json:"room_id"`
	MaxCapacity    int       `json:"max_capacity"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	RecurrenceType string    `json:"recurrence_type"` // none | weekly | biweekly
	RepeatCount    int       `json:"repeat_count"`
}

// ClassGateway 上游排课资源网关
type ClassGateway interface {
	// CreateClasses 批量排课；上游整批事务创建，非 2xx 表示一节都未创建。
	// idempotencyKey 随 Idempotency-Key 头发送（上游可能忽略，见流水表设计）。
	CreateClasses(ctx context.Context, token string, req *CreateClassesRequest, idempotencyKey string) ([]model.ScheduledClass, error)
	// ListToday 查询基地今日课程，按开始时间升序
	ListToday(ctx context.Context, token string) ([]model.ScheduledClass, error)
	// GetClass 查询单节课
	GetClass(ctx context.Context, token, classID string) (*model.ScheduledClass, error)
}

type classGateway struct {
	client *client
}

func (g *classGateway) CreateClasses(ctx context.Context, token string, req *CreateClassesRequest, idempotencyKey string) ([]model.ScheduledClass, error) {
	var created []model.ScheduledClass
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := g.client.do(ctx, http.MethodPost, "/base/classes", token, req, &created, headers); err != nil {
		return nil, err
	}
	return created, nil
}

func (g *classGateway) ListToday(ctx context.Context, token string) ([]model.ScheduledClass, error) {
	var classes []model.ScheduledClass
	q := url.Values{"date": {"today"}}
	if err := g.client.do(ctx, http.MethodGet, "/base/classes?"+q.Encode(), token, nil, &classes, nil); err != nil {
		return nil, err
	}
	return classes, nil
}

func (g *classGateway) GetClass(ctx context.Context, token, classID string) (*model.ScheduledClass, error) {
	var class model.ScheduledClass
	if err := g.client.do(ctx, http.MethodGet, "/base/classes/"+classID, token, nil, &class, nil); err != nil {
		return nil, err
	}
	return &class, nil
}
