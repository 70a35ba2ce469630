package service

import (
	"go.uber.org/zap"

	"github.com/SirOwss/MASARI/config"
	"github.com/SirOwss/MASARI/internal/repository"
	"github.com/SirOwss/MASARI/pkg/jwt"
	"github.com/SirOwss/MASARI/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Reference ReferenceService
	Schedule  ScheduleService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, cache, logger),
		Reference: NewReferenceService(repo, cfg, logger),
		Schedule:  NewScheduleService(repo, cache, cfg, nil, logger),
	}
}
