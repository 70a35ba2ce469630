package handler

import "github.com/SirOwss/MASARI/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Reference *ReferenceHandler
	Schedule  *ScheduleHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Reference: NewReferenceHandler(svc.Reference),
		Schedule:  NewScheduleHandler(svc.Schedule),
	}
}
