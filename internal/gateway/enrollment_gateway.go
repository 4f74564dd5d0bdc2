package gateway

import (
	"context"
	"net/http"

	"github.com/SHILUNKA/edusaas-sub001/internal/model"
)

// CompleteEnrollmentRequest 点名（结课核销）上游请求体
// 扣课时、加积分均由上游在同一事务内完成，本服务不计算余额
type CompleteEnrollmentRequest struct {
	Status          string `json:"status"` // 固定 "completed"
	TeacherFeedback string `json:"teacher_feedback"`
}

// EnrollmentGateway 上游报名资源网关
type EnrollmentGateway interface {
	// ListByClass 获取某节课的花名册，按报名时间升序
	ListByClass(ctx context.Context, token, classID string) ([]model.Enrollment, error)
	// Complete 将一条报名记录置为 completed；
	// 上游对已 completed 的记录返回 409，不会重复核销。
	Complete(ctx context.Context, token, enrollmentID string, req *CompleteEnrollmentRequest) (*model.Enrollment, error)
}

type enrollmentGateway struct {
	client *client
}

func (g *enrollmentGateway) ListByClass(ctx context.Context, token, classID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	if err := g.client.do(ctx, http.MethodGet, "/classes/"+classID+"/enrollments", token, nil, &enrollments, nil); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (g *enrollmentGateway) Complete(ctx context.Context, token, enrollmentID string, req *CompleteEnrollmentRequest) (*model.Enrollment, error) {
	var updated model.Enrollment
	if err := g.client.do(ctx, http.MethodPatch, "/enrollments/"+enrollmentID+"/complete", token, req, &updated, nil); err != nil {
		return nil, err
	}
	return &updated, nil
}
