package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/internal/repository"
)

// ProgramService 训练计划业务接口，所有操作限定于 userID 名下的计划
type ProgramService interface {
	Create(ctx context.Context, req *dto.CreateProgramRequest, userID string) (*dto.IDResponse, error)
	List(ctx context.Context, userID string) (*dto.ProgramListResponse, error)
	Get(ctx context.Context, id, userID string) (*dto.ProgramResponse, error)
	Rename(ctx context.Context, id string, req *dto.RenameProgramRequest, userID string) (*dto.ProgramResponse, error)
	Delete(ctx context.Context, id, userID string) error
}

type programService struct {
	repo   *repository.Repository
	trees  *treeLoader
	logger *zap.Logger
}

// NewProgramService 创建 ProgramService 实例
func NewProgramService(repo *repository.Repository, trees *treeLoader, logger *zap.Logger) ProgramService {
	return &programService{repo: repo, trees: trees, logger: logger}
}

func (s *programService) Create(ctx context.Context, req *dto.CreateProgramRequest, userID string) (*dto.IDResponse, error) {
	program := &model.Program{Name: req.Name, CreatedBy: userID}
	if err := s.repo.Program.Create(ctx, program); err != nil {
		s.logger.Error("创建训练计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.IDResponse{ID: program.ID}, nil
}

func (s *programService) List(ctx context.Context, userID string) (*dto.ProgramListResponse, error) {
	programs, err := s.repo.Program.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("查询训练计划列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.ProgramSummary, 0, len(programs))
	for i := range programs {
		items = append(items, toProgramSummary(&programs[i]))
	}
	return &dto.ProgramListResponse{Programs: items}, nil
}

func (s *programService) Get(ctx context.Context, id, userID string) (*dto.ProgramResponse, error) {
	if _, err := authorize(ctx, s.logger, s.repo.Access.Program, id, userID, ErrProgramNotFound); err != nil {
		return nil, err
	}

	tree, err := s.trees.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ProgramResponse{Program: *tree}, nil
}

func (s *programService) Rename(ctx context.Context, id string, req *dto.RenameProgramRequest, userID string) (*dto.ProgramResponse, error) {
	if _, err := authorize(ctx, s.logger, s.repo.Access.Program, id, userID, ErrProgramNotFound); err != nil {
		return nil, err
	}

	if err := s.repo.Program.UpdateName(ctx, id, req.Name); err != nil {
		s.logger.Error("重命名训练计划失败", zap.String("program_id", id), zap.Error(err))
		return nil, err
	}
	s.trees.invalidate(ctx, id)

	tree, err := s.trees.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ProgramResponse{Program: *tree}, nil
}

func (s *programService) Delete(ctx context.Context, id, userID string) error {
	if _, err := authorize(ctx, s.logger, s.repo.Access.Program, id, userID, ErrProgramNotFound); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		return txRepo.Program.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除训练计划失败", zap.String("program_id", id), zap.Error(err))
		return err
	}

	s.trees.invalidate(ctx, id)
	return nil
}
