package service

import (
	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/config"
	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/internal/repository"
	"github.com/SHILUNKA/edusaas-sub001/pkg/jwt"
	"github.com/SHILUNKA/edusaas-sub001/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Schedule ScheduleService
	Roster   RosterService
	Export   ExportService
	Calendar CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	gw *gateway.Gateway,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) (*Service, error) {
	location, err := cfg.Server.Location()
	if err != nil {
		return nil, err
	}
	return &Service{
		Auth:     NewAuthService(gw.Auth, jwtMgr, rdb, logger),
		Schedule: NewScheduleService(gw.Class, gw.Room, repo.Submission, location, logger),
		Roster:   NewRosterService(gw.Class, gw.Enrollment, rdb, logger),
		Export:   NewExportService(gw.Class, gw.Enrollment, location, logger),
		Calendar: NewCalendarService(repo.Submission, logger),
	}, nil
}
