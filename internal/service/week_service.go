package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/internal/repository"
)

// WeekService 训练周业务接口
type WeekService interface {
	// Create 在阶段末尾追加一周，周序号从 1 开始
	Create(ctx context.Context, req *dto.CreateWeekRequest, userID string) (*dto.WeekResponse, error)
	// Delete 级联删除训练周并将剩余周重新编号为 1..n
	Delete(ctx context.Context, id, userID string) error
}

type weekService struct {
	repo   *repository.Repository
	trees  *treeLoader
	logger *zap.Logger
}

// NewWeekService 创建 WeekService 实例
func NewWeekService(repo *repository.Repository, trees *treeLoader, logger *zap.Logger) WeekService {
	return &weekService{repo: repo, trees: trees, logger: logger}
}

func (s *weekService) Create(ctx context.Context, req *dto.CreateWeekRequest, userID string) (*dto.WeekResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Block, req.BlockID, userID, ErrBlockNotFound)
	if err != nil {
		return nil, err
	}

	week := &model.Week{BlockID: req.BlockID}
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		max, err := txRepo.Week.MaxNumber(ctx, req.BlockID)
		if err != nil {
			return err
		}
		week.WeekNumber = max + 1
		return txRepo.Week.Create(ctx, week)
	})
	if err != nil {
		s.logger.Error("创建训练周失败", zap.String("block_id", req.BlockID), zap.Error(err))
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.WeekResponse{Week: toWeekTree(week)}, nil
}

func (s *weekService) Delete(ctx context.Context, id, userID string) error {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Week, id, userID, ErrWeekNotFound)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		week, err := txRepo.Week.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txRepo.Week.Delete(ctx, id); err != nil {
			return err
		}
		remaining, err := txRepo.Week.ListByBlock(ctx, week.BlockID)
		if err != nil {
			return err
		}
		siblings := make([]sibling, len(remaining))
		for i, w := range remaining {
			siblings[i] = sibling{ID: w.ID, Order: w.WeekNumber}
		}
		return resequence(ctx, siblings, 1, txRepo.Week.UpdateNumber)
	})
	if err != nil {
		s.logger.Error("删除训练周失败", zap.String("week_id", id), zap.Error(err))
		return err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return nil
}
