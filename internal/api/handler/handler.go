package handler

import "github.com/SHILUNKA/edusaas-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Class  *ClassHandler
	Roster *RosterHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Class:  NewClassHandler(svc.Schedule, svc.Calendar, svc.Auth),
		Roster: NewRosterHandler(svc.Roster, svc.Export, svc.Auth),
	}
}
