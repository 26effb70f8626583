package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/internal/repository"
)

// BlockService 训练阶段业务接口
type BlockService interface {
	Create(ctx context.Context, req *dto.CreateBlockRequest, userID string) (*dto.BlockResponse, error)
	Rename(ctx context.Context, id string, req *dto.RenameBlockRequest, userID string) (*dto.BlockResponse, error)
	// Reorder 将阶段移动到目标下标，返回重排后的全部同级阶段
	Reorder(ctx context.Context, req *dto.ReorderBlockRequest, userID string) (*dto.BlockListResponse, error)
	// Delete 级联删除阶段并重排剩余阶段序号
	Delete(ctx context.Context, id, userID string) error
}

type blockService struct {
	repo   *repository.Repository
	trees  *treeLoader
	logger *zap.Logger
}

// NewBlockService 创建 BlockService 实例
func NewBlockService(repo *repository.Repository, trees *treeLoader, logger *zap.Logger) BlockService {
	return &blockService{repo: repo, trees: trees, logger: logger}
}

func blockSiblings(blocks []model.Block) []sibling {
	out := make([]sibling, len(blocks))
	for i, b := range blocks {
		out[i] = sibling{ID: b.ID, Order: b.SortOrder}
	}
	return out
}

// ────────────────────── Create ──────────────────────

func (s *blockService) Create(ctx context.Context, req *dto.CreateBlockRequest, userID string) (*dto.BlockResponse, error) {
	if _, err := authorize(ctx, s.logger, s.repo.Access.Program, req.ProgramID, userID, ErrProgramNotFound); err != nil {
		return nil, err
	}

	block := &model.Block{ProgramID: req.ProgramID, Name: req.Name}
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		count, err := txRepo.Block.CountByProgram(ctx, req.ProgramID)
		if err != nil {
			return err
		}
		block.SortOrder = int(count)
		return txRepo.Block.Create(ctx, block)
	})
	if err != nil {
		s.logger.Error("创建训练阶段失败", zap.String("program_id", req.ProgramID), zap.Error(err))
		return nil, err
	}

	s.trees.invalidate(ctx, req.ProgramID)
	return &dto.BlockResponse{Block: toBlockTree(block)}, nil
}

// ────────────────────── Rename ──────────────────────

func (s *blockService) Rename(ctx context.Context, id string, req *dto.RenameBlockRequest, userID string) (*dto.BlockResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Block, id, userID, ErrBlockNotFound)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Block.UpdateName(ctx, id, req.Name); err != nil {
		s.logger.Error("重命名训练阶段失败", zap.String("block_id", id), zap.Error(err))
		return nil, err
	}
	s.trees.invalidate(ctx, owner.ProgramID)

	tree, err := s.trees.load(ctx, owner.ProgramID)
	if err != nil {
		return nil, err
	}
	for _, b := range tree.Blocks {
		if b.ID == id {
			return &dto.BlockResponse{Block: b}, nil
		}
	}
	return nil, ErrBlockNotFound
}

// ────────────────────── Reorder ──────────────────────

func (s *blockService) Reorder(ctx context.Context, req *dto.ReorderBlockRequest, userID string) (*dto.BlockListResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Block, req.BlockID, userID, ErrBlockNotFound)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		blocks, err := txRepo.Block.ListByProgram(ctx, owner.ProgramID)
		if err != nil {
			return err
		}
		ordered, ok := spliceSiblings(blockSiblings(blocks), req.BlockID, *req.Order)
		if !ok {
			return ErrBlockNotFound
		}
		return resequence(ctx, ordered, 0, txRepo.Block.UpdateSortOrder)
	})
	if err != nil {
		if !errors.Is(err, ErrBlockNotFound) {
			s.logger.Error("调整训练阶段顺序失败", zap.String("block_id", req.BlockID), zap.Error(err))
		}
		return nil, err
	}
	s.trees.invalidate(ctx, owner.ProgramID)

	tree, err := s.trees.load(ctx, owner.ProgramID)
	if err != nil {
		return nil, err
	}
	return &dto.BlockListResponse{Blocks: tree.Blocks}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *blockService) Delete(ctx context.Context, id, userID string) error {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Block, id, userID, ErrBlockNotFound)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Block.Delete(ctx, id); err != nil {
			return err
		}
		remaining, err := txRepo.Block.ListByProgram(ctx, owner.ProgramID)
		if err != nil {
			return err
		}
		return resequence(ctx, blockSiblings(remaining), 0, txRepo.Block.UpdateSortOrder)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("删除训练阶段失败", zap.String("block_id", id), zap.Error(err))
		return err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return nil
}
