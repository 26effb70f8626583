package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/internal/dto"
	pkgredis "github.com/artisenpaiii/liftlog/pkg/redis"
)

// JSONCache 计划树缓存存储（由 pkg/redis.Client 实现）
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// treeCache 按计划缓存完整计划树，store 为 nil 时所有操作为空操作
// 缓存读写失败只记录日志，不影响请求结果
//
// 每个计划维护一个版本号，变更时自增；缓存条目记录写入时读到的版本，
// 读取时版本不一致即视为未命中，避免并发读在清除缓存之后回写旧树
type treeCache struct {
	store  JSONCache
	ttl    time.Duration
	logger *zap.Logger
}

// noVersion 版本号读取失败，本次不写缓存
const noVersion int64 = -1

type cachedTree struct {
	Version int64            `json:"version"`
	Tree    *dto.ProgramTree `json:"tree"`
}

func treeKey(programID string) string {
	return "program:tree:" + programID
}

func treeVersionKey(programID string) string {
	return "program:tree:ver:" + programID
}

// get 返回缓存的计划树以及当前版本号；未命中时版本号用于随后的 set
func (c *treeCache) get(ctx context.Context, programID string) (*dto.ProgramTree, int64, bool) {
	if c == nil || c.store == nil {
		return nil, noVersion, false
	}

	version, err := c.store.GetInt(ctx, treeVersionKey(programID))
	if err != nil {
		c.logger.Warn("读取计划树版本失败", zap.String("program_id", programID), zap.Error(err))
		return nil, noVersion, false
	}

	var entry cachedTree
	if err := c.store.GetJSON(ctx, treeKey(programID), &entry); err != nil {
		if !errors.Is(err, pkgredis.ErrCacheMiss) {
			c.logger.Warn("读取计划树缓存失败", zap.String("program_id", programID), zap.Error(err))
		}
		return nil, version, false
	}
	if entry.Version != version || entry.Tree == nil {
		return nil, version, false
	}
	return entry.Tree, version, true
}

// set 以读取前的版本号写入；期间发生的变更会使该条目在下次读取时失效
func (c *treeCache) set(ctx context.Context, tree *dto.ProgramTree, version int64) {
	if c == nil || c.store == nil || version == noVersion {
		return
	}
	entry := cachedTree{Version: version, Tree: tree}
	if err := c.store.SetJSON(ctx, treeKey(tree.ID), entry, c.ttl); err != nil {
		c.logger.Warn("写入计划树缓存失败", zap.String("program_id", tree.ID), zap.Error(err))
	}
}

func (c *treeCache) invalidate(ctx context.Context, programID string) {
	if c == nil || c.store == nil {
		return
	}
	if _, err := c.store.Incr(ctx, treeVersionKey(programID)); err != nil {
		c.logger.Warn("更新计划树版本失败", zap.String("program_id", programID), zap.Error(err))
	}
	if err := c.store.Delete(ctx, treeKey(programID)); err != nil {
		c.logger.Warn("清除计划树缓存失败", zap.String("program_id", programID), zap.Error(err))
	}
}
