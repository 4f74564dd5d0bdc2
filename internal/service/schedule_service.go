package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SHILUNKA/edusaas-sub001/internal/dto"
	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/internal/model"
	"github.com/SHILUNKA/edusaas-sub001/internal/repository"
	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
)

// 服务层可能返回的错误
var (
	ErrSubmissionNotFound = errors.New("提交流水不存在")
	ErrSubmissionPending  = errors.New("相同提交正在处理中")
)

// ScheduleService 批量排课服务接口
type ScheduleService interface {
	// Preview 校验草稿并生成课次预览，不触发任何上游写入
	Preview(ctx context.Context, req *dto.ScheduleDraftRequest) (*dto.PreviewResponse, error)
	// Submit 校验草稿、落流水、调上游整批创建；同一幂等键重复提交直接重放历史结果
	Submit(ctx context.Context, token, operatorID, baseID string, req *dto.ScheduleDraftRequest, idempotencyKey string) (*dto.SubmitResponse, error)
	// ListToday 今日课程列表，附带按当前时刻推导的生命周期阶段
	ListToday(ctx context.Context, token string) ([]dto.ClassResponse, error)
	// ListSubmissions 操作员最近的提交流水
	ListSubmissions(ctx context.Context, operatorID string, limit int) ([]dto.SubmissionResponse, error)
}

type scheduleService struct {
	classGW  gateway.ClassGateway
	roomGW   gateway.RoomGateway
	subRepo  repository.SubmissionRepository
	location *time.Location
	logger   *zap.Logger
}

// NewScheduleService 创建排课服务
func NewScheduleService(
	classGW gateway.ClassGateway,
	roomGW gateway.RoomGateway,
	subRepo repository.SubmissionRepository,
	location *time.Location,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{
		classGW:  classGW,
		roomGW:   roomGW,
		subRepo:  subRepo,
		location: location,
		logger:   logger,
	}
}

// ── 草稿校验 ──

// validatedDraft 校验通过后的草稿快照
type validatedDraft struct {
	teacherIDs  []string // 已去重排序
	cadence     Cadence
	occurrences []time.Time
	duration    time.Duration
}

// validateDraft 完整校验一份排课草稿并展开课次。
// 所有校验在本地完成，任何一条不过都不发上游请求。
func (s *scheduleService) validateDraft(req *dto.ScheduleDraftRequest) (*validatedDraft, error) {
	if req.CourseID == "" {
		return nil, pkgerrors.NewValidation(pkgerrors.CodeMissingCourse)
	}
	if req.RoomID == "" {
		return nil, pkgerrors.NewValidation(pkgerrors.CodeMissingRoom)
	}
	if len(req.TeacherIDs) == 0 {
		return nil, pkgerrors.NewValidation(pkgerrors.CodeNoTeacher)
	}
	if !req.FirstEnd.After(req.FirstStart) {
		return nil, pkgerrors.NewValidation(pkgerrors.CodeBadTimeWindow)
	}

	cadence := Cadence(req.Recurrence)
	if req.Recurrence == "" {
		cadence = CadenceNone
	}
	if !cadence.Valid() {
		return nil, pkgerrors.NewValidation(pkgerrors.CodeBadTermination)
	}

	var term Termination
	if cadence != CadenceNone {
		// 次数与截止日必须且只能给一个
		hasCount := req.RepeatCount > 0
		hasUntil := req.UntilDate != ""
		if hasCount == hasUntil {
			return nil, pkgerrors.NewValidation(pkgerrors.CodeBadTermination)
		}
		if hasCount {
			term.Count = req.RepeatCount
		} else {
			day, err := time.ParseInLocation("2006-01-02", req.UntilDate, s.location)
			if err != nil {
				return nil, pkgerrors.NewValidation(pkgerrors.CodeBadTermination)
			}
			term.Until = EndOfDay(day.Year(), day.Month(), day.Day(), s.location)
		}
	}

	occurrences, err := GenerateOccurrences(req.FirstStart, cadence, term)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		// 截止日早于首节课，一节都排不出来
		return nil, pkgerrors.NewValidation(pkgerrors.CodeRangeTooLarge)
	}

	return &validatedDraft{
		teacherIDs:  normalizeTeacherIDs(req.TeacherIDs),
		cadence:     cadence,
		occurrences: occurrences,
		duration:    req.FirstEnd.Sub(req.FirstStart),
	}, nil
}

// normalizeTeacherIDs 去重并排序，保证同一草稿生成稳定的流水快照
func normalizeTeacherIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ── 预览 ──

func (s *scheduleService) Preview(ctx context.Context, req *dto.ScheduleDraftRequest) (*dto.PreviewResponse, error) {
	draft, err := s.validateDraft(req)
	if err != nil {
		return nil, err
	}
	return &dto.PreviewResponse{
		OccurrenceCount: len(draft.occurrences),
		Occurrences:     formatOccurrences(draft.occurrences),
	}, nil
}

// ── 提交 ──

func (s *scheduleService) Submit(ctx context.Context, token, operatorID, baseID string, req *dto.ScheduleDraftRequest, idempotencyKey string) (*dto.SubmitResponse, error) {
	draft, err := s.validateDraft(req)
	if err != nil {
		return nil, err
	}

	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	// 幂等重放：成功过的提交原样返回，处理中的拒绝并发重试，失败过的复用同一行重试
	existing, err := s.subRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case model.SubmissionStatusSucceeded:
			s.logger.Info("幂等键命中，重放历史结果",
				zap.String("submission_id", existing.SubmissionID),
				zap.String("idempotency_key", idempotencyKey),
			)
			return &dto.SubmitResponse{
				SubmissionID: existing.SubmissionID,
				CreatedCount: existing.CreatedCount,
				Occurrences:  formatOccurrences(replayOccurrences(existing)),
			}, nil
		case model.SubmissionStatusPending:
			return nil, ErrSubmissionPending
		}
	}

	capacity := req.MaxCapacity
	if capacity <= 0 {
		room, err := s.roomGW.GetRoom(ctx, token, req.RoomID)
		if err != nil {
			return nil, err
		}
		capacity = room.Capacity
	}

	sub := existing
	if sub == nil {
		sub = &model.ScheduleSubmission{
			IdempotencyKey: idempotencyKey,
			OperatorID:     operatorID,
			BaseID:         baseID,
			CourseID:       req.CourseID,
			CourseName:     req.CourseName,
			RoomID:         req.RoomID,
			RoomName:       req.RoomName,
			MaxCapacity:    capacity,
			FirstStart:     req.FirstStart,
			FirstEnd:       req.FirstEnd,
			RecurrenceType: string(draft.cadence),
			RepeatCount:    len(draft.occurrences),
			Status:         model.SubmissionStatusPending,
		}
		sub.SetTeacherIDs(draft.teacherIDs)
		if err := s.subRepo.Create(ctx, sub); err != nil {
			return nil, err
		}
	} else {
		// 失败重试：沿用原流水行，但快照必须跟随本次请求刷新，
		// 否则重试时改过的时间/老师/教室会让日历导出回放旧数据
		sub.CourseID = req.CourseID
		sub.CourseName = req.CourseName
		sub.RoomID = req.RoomID
		sub.RoomName = req.RoomName
		sub.MaxCapacity = capacity
		sub.FirstStart = req.FirstStart
		sub.FirstEnd = req.FirstEnd
		sub.RecurrenceType = string(draft.cadence)
		sub.RepeatCount = len(draft.occurrences)
		sub.SetTeacherIDs(draft.teacherIDs)
		sub.Status = model.SubmissionStatusPending
		sub.FailureReason = ""
		if err := s.subRepo.Update(ctx, sub); err != nil {
			return nil, err
		}
	}

	created, err := s.classGW.CreateClasses(ctx, token, &gateway.CreateClassesRequest{
		CourseID:       req.CourseID,
		TeacherIDs:     draft.teacherIDs,
		RoomID:         req.RoomID,
		MaxCapacity:    capacity,
		StartTime:      req.FirstStart,
		EndTime:        req.FirstEnd,
		RecurrenceType: string(draft.cadence),
		RepeatCount:    len(draft.occurrences),
	}, idempotencyKey)
	if err != nil {
		sub.Status = model.SubmissionStatusFailed
		sub.FailureReason = err.Error()
		if uerr := s.subRepo.Update(ctx, sub); uerr != nil {
			s.logger.Error("流水落败态失败", zap.String("submission_id", sub.SubmissionID), zap.Error(uerr))
		}
		return nil, err
	}

	sub.Status = model.SubmissionStatusSucceeded
	sub.CreatedCount = len(created)
	if err := s.subRepo.Update(ctx, sub); err != nil {
		// 上游已创建成功，本地状态落后只记日志，不回滚用户结果
		s.logger.Error("流水落成功态失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
	}

	s.logger.Info("批量排课成功",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("course_id", req.CourseID),
		zap.Int("created_count", len(created)),
	)

	return &dto.SubmitResponse{
		SubmissionID: sub.SubmissionID,
		CreatedCount: len(created),
		Occurrences:  formatOccurrences(draft.occurrences),
	}, nil
}

// replayOccurrences 用流水快照重放课次序列
func replayOccurrences(sub *model.ScheduleSubmission) []time.Time {
	occurrences, err := GenerateOccurrences(sub.FirstStart, Cadence(sub.RecurrenceType), Termination{Count: sub.RepeatCount})
	if err != nil {
		return []time.Time{sub.FirstStart}
	}
	return occurrences
}

func formatOccurrences(occurrences []time.Time) []string {
	out := make([]string, 0, len(occurrences))
	for _, t := range occurrences {
		out = append(out, t.UTC().Format(time.RFC3339))
	}
	return out
}

// ── 今日课程 ──

func (s *scheduleService) ListToday(ctx context.Context, token string) ([]dto.ClassResponse, error) {
	classes, err := s.classGW.ListToday(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]dto.ClassResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, dto.ClassResponse{
			ID:           c.ID,
			CourseName:   c.CourseName,
			RoomName:     c.RoomName,
			TeacherNames: c.TeacherNames,
			StartTime:    c.StartTime.UTC().Format(time.RFC3339),
			EndTime:      c.EndTime.UTC().Format(time.RFC3339),
			MaxCapacity:  c.MaxCapacity,
			Phase:        string(ClassifyPhase(now, c.StartTime, c.EndTime)),
		})
	}
	return out, nil
}

// ── 流水查询 ──

func (s *scheduleService) ListSubmissions(ctx context.Context, operatorID string, limit int) ([]dto.SubmissionResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	subs, err := s.subRepo.ListByOperator(ctx, operatorID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, dto.SubmissionResponse{
			SubmissionID:   sub.SubmissionID,
			CourseID:       sub.CourseID,
			RoomID:         sub.RoomID,
			RecurrenceType: sub.RecurrenceType,
			RepeatCount:    sub.RepeatCount,
			Status:         sub.Status,
			CreatedCount:   sub.CreatedCount,
			FailureReason:  sub.FailureReason,
			FirstStart:     sub.FirstStart.UTC().Format(time.RFC3339),
			CreatedAt:      sub.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
