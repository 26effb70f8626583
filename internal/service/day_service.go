package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/internal/repository"
)

// DayService 训练日业务接口
type DayService interface {
	// Create 在周末尾追加训练日，并按顺序创建初始表格列
	Create(ctx context.Context, req *dto.CreateDayRequest, userID string) (*dto.DayResponse, error)
	// Update 仅更新请求中出现的字段，名称或备注为空字符串时清空
	Update(ctx context.Context, req *dto.UpdateDayRequest, userID string) (*dto.DayResponse, error)
	// Delete 级联删除训练日并将剩余训练日重新编号为 1..n
	Delete(ctx context.Context, id, userID string) error
}

type dayService struct {
	repo   *repository.Repository
	trees  *treeLoader
	logger *zap.Logger
}

// NewDayService 创建 DayService 实例
func NewDayService(repo *repository.Repository, trees *treeLoader, logger *zap.Logger) DayService {
	return &dayService{repo: repo, trees: trees, logger: logger}
}

// normalizeColumns 去除空白列名，重复列名只保留首次出现
func normalizeColumns(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// optionalText 空白字符串视为清空（NULL），名称去除首尾空白
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// optionalNotes 备注保留原始 Markdown 排版，仅空白时清空
func optionalNotes(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// ────────────────────── Create ──────────────────────

func (s *dayService) Create(ctx context.Context, req *dto.CreateDayRequest, userID string) (*dto.DayResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Week, req.WeekID, userID, ErrWeekNotFound)
	if err != nil {
		return nil, err
	}

	var created *model.Day
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		max, err := txRepo.Day.MaxNumber(ctx, req.WeekID)
		if err != nil {
			return err
		}

		day := &model.Day{WeekID: req.WeekID, DayNumber: max + 1, Name: optionalText(req.Name)}
		if err := txRepo.Day.Create(ctx, day); err != nil {
			return err
		}

		for i, name := range normalizeColumns(req.Columns) {
			col := &model.DayColumn{DayID: day.ID, Name: name, SortOrder: i}
			if err := txRepo.Column.Create(ctx, col); err != nil {
				return err
			}
		}

		created, err = txRepo.Day.GetWithTable(ctx, day.ID)
		return err
	})
	if err != nil {
		s.logger.Error("创建训练日失败", zap.String("week_id", req.WeekID), zap.Error(err))
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.DayResponse{Day: toDayTree(created)}, nil
}

// ────────────────────── Update ──────────────────────

func (s *dayService) Update(ctx context.Context, req *dto.UpdateDayRequest, userID string) (*dto.DayResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Day, req.DayID, userID, ErrDayNotFound)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, 2)
	if req.Name != nil {
		fields["name"] = optionalText(req.Name)
	}
	if req.Notes != nil {
		fields["notes"] = optionalNotes(req.Notes)
	}

	if err := s.repo.Day.UpdateFields(ctx, req.DayID, fields); err != nil {
		s.logger.Error("更新训练日失败", zap.String("day_id", req.DayID), zap.Error(err))
		return nil, err
	}
	if len(fields) > 0 {
		s.trees.invalidate(ctx, owner.ProgramID)
	}

	day, err := s.repo.Day.GetWithTable(ctx, req.DayID)
	if err != nil {
		s.logger.Error("查询训练日失败", zap.String("day_id", req.DayID), zap.Error(err))
		return nil, err
	}
	return &dto.DayResponse{Day: toDayTree(day)}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *dayService) Delete(ctx context.Context, id, userID string) error {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Day, id, userID, ErrDayNotFound)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		day, err := txRepo.Day.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txRepo.Day.Delete(ctx, id); err != nil {
			return err
		}
		remaining, err := txRepo.Day.ListByWeek(ctx, day.WeekID)
		if err != nil {
			return err
		}
		siblings := make([]sibling, len(remaining))
		for i, d := range remaining {
			siblings[i] = sibling{ID: d.ID, Order: d.DayNumber}
		}
		return resequence(ctx, siblings, 1, txRepo.Day.UpdateNumber)
	})
	if err != nil {
		s.logger.Error("删除训练日失败", zap.String("day_id", id), zap.Error(err))
		return err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return nil
}
