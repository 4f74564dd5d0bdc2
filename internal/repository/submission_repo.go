package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SHILUNKA/edusaas-sub001/internal/model"
)

// SubmissionRepository 排课提交流水数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.ScheduleSubmission) error
	GetByID(ctx context.Context, id string) (*model.ScheduleSubmission, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.ScheduleSubmission, error)
	ListByOperator(ctx context.Context, operatorID string, limit int) ([]model.ScheduleSubmission, error)
	Update(ctx context.Context, sub *model.ScheduleSubmission) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ── Submission Repository 实现 ──

type submissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.ScheduleSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.ScheduleSubmission, error) {
	var sub model.ScheduleSubmission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*model.ScheduleSubmission, error) {
	var sub model.ScheduleSubmission
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListByOperator(ctx context.Context, operatorID string, limit int) ([]model.ScheduleSubmission, error) {
	var subs []model.ScheduleSubmission
	err := r.db.WithContext(ctx).
		Where("operator_id = ?", operatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) Update(ctx context.Context, sub *model.ScheduleSubmission) error {
	sub.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *submissionRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.ScheduleSubmission{})
	return result.RowsAffected, result.Error
}
