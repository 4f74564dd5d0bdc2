package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/config"
	"github.com/SHILUNKA/edusaas-sub001/internal/repository"
)

// Scheduler 后台定时任务
// 目前只有一个任务：按保留期清理过期的排课提交流水
type Scheduler struct {
	cron    *cron.Cron
	cfg     *config.JournalConfig
	subRepo repository.SubmissionRepository
	logger  *zap.Logger
}

// NewScheduler 创建定时任务调度器
func NewScheduler(cfg *config.JournalConfig, subRepo repository.SubmissionRepository, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cfg:     cfg,
		subRepo: subRepo,
		logger:  logger,
	}
}

// Start 注册并启动全部定时任务
func (s *Scheduler) Start() error {
	spec := s.cfg.SweepCron
	if spec == "" {
		spec = "@daily"
	}
	if _, err := s.cron.AddFunc(spec, s.sweepJournal); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("定时任务已启动",
		zap.String("sweep_cron", spec),
		zap.Int("retention_days", s.cfg.RetentionDays),
	)
	return nil
}

// Stop 停止调度并等待在跑任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweepJournal() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	deleted, err := s.subRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("清理过期流水失败", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("清理过期流水完成",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
