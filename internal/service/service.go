package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/config"
	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/repository"
	"github.com/artisenpaiii/liftlog/pkg/jwt"
	"github.com/artisenpaiii/liftlog/pkg/mail"
	pkgredis "github.com/artisenpaiii/liftlog/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Program ProgramService
	Block   BlockService
	Week    WeekService
	Day     DayService
	Table   TableService
	Export  ExportService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时禁用 Token 黑名单与计划树缓存
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *pkgredis.Client,
	mailer mail.Sender,
	logger *zap.Logger,
) *Service {
	var (
		blacklist TokenBlacklist
		store     JSONCache
	)
	if rdb != nil {
		blacklist = rdb
		store = rdb
	}

	cache := &treeCache{store: store, ttl: cfg.Cache.TreeTTL, logger: logger}
	trees := &treeLoader{repo: repo, cache: cache, logger: logger}

	return &Service{
		Auth:    NewAuthService(repo, jwtMgr, blacklist, mailer, logger),
		Program: NewProgramService(repo, trees, logger),
		Block:   NewBlockService(repo, trees, logger),
		Week:    NewWeekService(repo, trees, logger),
		Day:     NewDayService(repo, trees, logger),
		Table:   NewTableService(repo, trees, logger),
		Export:  NewExportService(repo, trees, logger),
	}
}

// ── 归属校验 ──

// resolveFunc AccessRepository 中的归属解析方法
type resolveFunc func(ctx context.Context, id string) (*repository.Ownership, error)

// authorize 解析实体归属；实体不存在或不属于 userID 时统一返回 notFound，不暴露归属信息
func authorize(ctx context.Context, logger *zap.Logger, resolve resolveFunc, id, userID string, notFound error) (*repository.Ownership, error) {
	// 主键为 UUID 列，非法 id 不可能存在
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound
	}

	o, err := resolve(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		logger.Error("解析实体归属失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if o.OwnerID != userID {
		return nil, notFound
	}
	return o, nil
}

// ── 计划树加载 ──

// treeLoader 读取计划树（优先缓存），并在变更后清除缓存
type treeLoader struct {
	repo   *repository.Repository
	cache  *treeCache
	logger *zap.Logger
}

func (l *treeLoader) load(ctx context.Context, programID string) (*dto.ProgramTree, error) {
	tree, version, ok := l.cache.get(ctx, programID)
	if ok {
		return tree, nil
	}

	program, err := l.repo.Program.GetTree(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		l.logger.Error("加载计划树失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}

	tree = toProgramTree(program)
	l.cache.set(ctx, tree, version)
	return tree, nil
}

func (l *treeLoader) invalidate(ctx context.Context, programID string) {
	l.cache.invalidate(ctx, programID)
}
