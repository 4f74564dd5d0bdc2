package service

import (
	"context"
	"errors"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SHILUNKA/edusaas-sub001/internal/model"
	"github.com/SHILUNKA/edusaas-sub001/internal/repository"
)

// ── 日历导出 ──
//
// 凭提交流水的草稿快照重放课次序列，生成标准 iCalendar (RFC 5545) 内容。
// 每个课次输出为独立 VEVENT 而不是 RRULE：课次数已知且有限，
// 逐个事件对日历客户端的兼容性最好。

var ErrCalendarNotReady = errors.New("该提交未成功，无法导出日历")

// CalendarService 日历导出接口
type CalendarService interface {
	// ExportSubmission 将一次成功的批量排课导出为 ICS，只允许提交人本人导出
	ExportSubmission(ctx context.Context, operatorID, submissionID string) (string, string, error)
}

type calendarService struct {
	subRepo repository.SubmissionRepository
	logger  *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(subRepo repository.SubmissionRepository, logger *zap.Logger) CalendarService {
	return &calendarService{subRepo: subRepo, logger: logger}
}

func (s *calendarService) ExportSubmission(ctx context.Context, operatorID, submissionID string) (string, string, error) {
	sub, err := s.subRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrSubmissionNotFound
		}
		return "", "", err
	}
	// 越权查询按不存在处理，不泄露他人流水
	if sub.OperatorID != operatorID {
		return "", "", ErrSubmissionNotFound
	}
	if sub.Status != model.SubmissionStatusSucceeded {
		return "", "", ErrCalendarNotReady
	}

	occurrences, err := GenerateOccurrences(sub.FirstStart, Cadence(sub.RecurrenceType), Termination{Count: sub.RepeatCount})
	if err != nil {
		// 流水快照本身生成过一次，重放不应失败
		s.logger.Error("重放课次序列失败", zap.String("submission_id", submissionID), zap.Error(err))
		return "", "", err
	}

	summary := sub.CourseName
	if summary == "" {
		summary = "课程 " + sub.CourseID
	}
	duration := sub.FirstEnd.Sub(sub.FirstStart)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//edusaas//console//CN")

	for i, start := range occurrences {
		event := cal.AddEvent(fmt.Sprintf("%s-%d@edusaas", sub.SubmissionID, i+1))
		event.SetCreatedTime(sub.CreatedAt)
		event.SetDtStampTime(sub.CreatedAt)
		event.SetStartAt(start.UTC())
		event.SetEndAt(start.Add(duration).UTC())
		event.SetSummary(summary)
		if sub.RoomName != "" {
			event.SetLocation(sub.RoomName)
		}
		if sub.RepeatCount > 1 {
			event.SetDescription(fmt.Sprintf("第 %d/%d 次课", i+1, sub.RepeatCount))
		}
	}

	filename := fmt.Sprintf("课表_%s.ics", sub.SubmissionID)
	return cal.Serialize(), filename, nil
}
