package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/internal/dto"
	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/internal/model"
	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
)

// checkinLockTTL 点名互斥锁兜底过期时间
// 正常路径走显式释放，TTL 只防进程崩溃后锁悬挂
const checkinLockTTL = 10 * time.Second

// checkinLocker 点名互斥锁（Redis SETNX 实现）
type checkinLocker interface {
	AcquireCheckinLock(ctx context.Context, enrollmentID string, ttl time.Duration) (bool, error)
	ReleaseCheckinLock(ctx context.Context, enrollmentID string) error
}

// RosterService 花名册（点名）服务接口
type RosterService interface {
	// GetRoster 某节课的完整花名册，到场数每次现算
	GetRoster(ctx context.Context, token, classID string) (*dto.RosterResponse, error)
	// CheckIn 将一条报名记录置为 completed。
	// 前置校验全部通过才发上游请求；失败时该条目保持原状。
	CheckIn(ctx context.Context, token, classID, enrollmentID string, req *dto.CheckinRequest) (*dto.EnrollmentResponse, error)
}

type rosterService struct {
	classGW      gateway.ClassGateway
	enrollmentGW gateway.EnrollmentGateway
	locker       checkinLocker
	logger       *zap.Logger
}

// NewRosterService 创建花名册服务
func NewRosterService(
	classGW gateway.ClassGateway,
	enrollmentGW gateway.EnrollmentGateway,
	locker checkinLocker,
	logger *zap.Logger,
) RosterService {
	return &rosterService{
		classGW:      classGW,
		enrollmentGW: enrollmentGW,
		locker:       locker,
		logger:       logger,
	}
}

func (s *rosterService) GetRoster(ctx context.Context, token, classID string) (*dto.RosterResponse, error) {
	class, err := s.classGW.GetClass(ctx, token, classID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollmentGW.ListByClass(ctx, token, classID)
	if err != nil {
		return nil, err
	}

	phase := ClassifyPhase(time.Now(), class.StartTime, class.EndTime)

	arrived := 0
	entries := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status == model.EnrollmentStatusCompleted {
			arrived++
		}
		entries = append(entries, toEnrollmentResponse(&e))
	}

	return &dto.RosterResponse{
		ClassID:      classID,
		Phase:        string(phase),
		Locked:       RosterLocked(phase),
		TotalCount:   len(entries),
		ArrivedCount: arrived,
		Enrollments:  entries,
	}, nil
}

func (s *rosterService) CheckIn(ctx context.Context, token, classID, enrollmentID string, req *dto.CheckinRequest) (*dto.EnrollmentResponse, error) {
	// 生命周期门禁：墙钟先裁一次，上游仍是最终权威
	class, err := s.classGW.GetClass(ctx, token, classID)
	if err != nil {
		return nil, err
	}
	if RosterLocked(ClassifyPhase(time.Now(), class.StartTime, class.EndTime)) {
		return nil, pkgerrors.NewState(pkgerrors.CodeClassLocked)
	}

	// 同一条报名记录同时只允许一个点名请求在途
	acquired, err := s.locker.AcquireCheckinLock(ctx, enrollmentID, checkinLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pkgerrors.NewState(pkgerrors.CodeCheckinInFlight)
	}
	defer func() {
		if rerr := s.locker.ReleaseCheckinLock(context.WithoutCancel(ctx), enrollmentID); rerr != nil {
			s.logger.Warn("释放点名锁失败", zap.String("enrollment_id", enrollmentID), zap.Error(rerr))
		}
	}()

	updated, err := s.enrollmentGW.Complete(ctx, token, enrollmentID, &gateway.CompleteEnrollmentRequest{
		Status:          model.EnrollmentStatusCompleted,
		TeacherFeedback: req.TeacherFeedback,
	})
	if err != nil {
		// 上游 409 = 已 completed，翻译成状态错误而不是网关错误
		if re, ok := err.(*pkgerrors.RemoteError); ok && re.StatusCode == http.StatusConflict {
			return nil, pkgerrors.NewState(pkgerrors.CodeAlreadyCompleted)
		}
		return nil, err
	}

	s.logger.Info("点名成功",
		zap.String("class_id", classID),
		zap.String("enrollment_id", enrollmentID),
	)

	resp := toEnrollmentResponse(updated)
	return &resp, nil
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:              e.ID,
		ParticipantID:   e.ParticipantID,
		ParticipantName: e.ParticipantName,
		Status:          e.Status,
		TeacherFeedback: e.TeacherFeedback,
	}
}
