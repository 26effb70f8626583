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

// TableService 训练日表格（列 / 行 / 单元格）业务接口
type TableService interface {
	AddColumn(ctx context.Context, req *dto.CreateColumnRequest, userID string) (*dto.ColumnEnvelope, error)
	RenameColumn(ctx context.Context, req *dto.RenameColumnRequest, userID string) (*dto.ColumnEnvelope, error)
	ReorderColumn(ctx context.Context, req *dto.ReorderColumnRequest, userID string) (*dto.ColumnListResponse, error)
	// DeleteColumn 删除列及其单元格并重排剩余列
	DeleteColumn(ctx context.Context, id, userID string) error

	// AddRow 追加一行，并为每个已有列创建空单元格
	AddRow(ctx context.Context, req *dto.CreateRowRequest, userID string) (*dto.RowEnvelope, error)
	ReorderRow(ctx context.Context, req *dto.ReorderRowRequest, userID string) (*dto.RowListResponse, error)
	// DeleteRow 删除行及其单元格并重排剩余行
	DeleteRow(ctx context.Context, id, userID string) error

	// UpdateCell 仅更新已存在的单元格
	UpdateCell(ctx context.Context, req *dto.UpdateCellRequest, userID string) (*dto.CellEnvelope, error)
	// UpsertCell 按 (rowId, columnId) 插入或更新单元格，行与列必须属于同一训练日
	UpsertCell(ctx context.Context, req *dto.UpsertCellRequest, userID string) (*dto.CellEnvelope, error)
}

type tableService struct {
	repo   *repository.Repository
	trees  *treeLoader
	logger *zap.Logger
}

// NewTableService 创建 TableService 实例
func NewTableService(repo *repository.Repository, trees *treeLoader, logger *zap.Logger) TableService {
	return &tableService{repo: repo, trees: trees, logger: logger}
}

func columnSiblings(columns []model.DayColumn) []sibling {
	out := make([]sibling, len(columns))
	for i, c := range columns {
		out[i] = sibling{ID: c.ID, Order: c.SortOrder}
	}
	return out
}

func rowSiblings(rows []model.DayRow) []sibling {
	out := make([]sibling, len(rows))
	for i, r := range rows {
		out[i] = sibling{ID: r.ID, Order: r.SortOrder}
	}
	return out
}

// notFoundAs 将 gorm.ErrRecordNotFound 映射为业务错误
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// ────────────────────── Column ──────────────────────

func (s *tableService) AddColumn(ctx context.Context, req *dto.CreateColumnRequest, userID string) (*dto.ColumnEnvelope, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Day, req.DayID, userID, ErrDayNotFound)
	if err != nil {
		return nil, err
	}

	column := &model.DayColumn{DayID: req.DayID, Name: req.Name}
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		count, err := txRepo.Column.CountByDay(ctx, req.DayID)
		if err != nil {
			return err
		}
		column.SortOrder = int(count)
		return txRepo.Column.Create(ctx, column)
	})
	if err != nil {
		s.logger.Error("新增列失败", zap.String("day_id", req.DayID), zap.Error(err))
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.ColumnEnvelope{Column: toColumnResponse(column)}, nil
}

func (s *tableService) RenameColumn(ctx context.Context, req *dto.RenameColumnRequest, userID string) (*dto.ColumnEnvelope, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Column, req.ColumnID, userID, ErrColumnNotFound)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Column.UpdateName(ctx, req.ColumnID, req.Name); err != nil {
		s.logger.Error("重命名列失败", zap.String("column_id", req.ColumnID), zap.Error(err))
		return nil, err
	}
	s.trees.invalidate(ctx, owner.ProgramID)

	column, err := s.repo.Column.GetByID(ctx, req.ColumnID)
	if err != nil {
		return nil, notFoundAs(err, ErrColumnNotFound)
	}
	return &dto.ColumnEnvelope{Column: toColumnResponse(column)}, nil
}

func (s *tableService) ReorderColumn(ctx context.Context, req *dto.ReorderColumnRequest, userID string) (*dto.ColumnListResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Column, req.ColumnID, userID, ErrColumnNotFound)
	if err != nil {
		return nil, err
	}

	var result []model.DayColumn
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		column, err := txRepo.Column.GetByID(ctx, req.ColumnID)
		if err != nil {
			return notFoundAs(err, ErrColumnNotFound)
		}
		columns, err := txRepo.Column.ListByDay(ctx, column.DayID)
		if err != nil {
			return err
		}
		ordered, ok := spliceSiblings(columnSiblings(columns), req.ColumnID, *req.Order)
		if !ok {
			return ErrColumnNotFound
		}
		if err := resequence(ctx, ordered, 0, txRepo.Column.UpdateSortOrder); err != nil {
			return err
		}
		result, err = txRepo.Column.ListByDay(ctx, column.DayID)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrColumnNotFound) {
			s.logger.Error("调整列顺序失败", zap.String("column_id", req.ColumnID), zap.Error(err))
		}
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.ColumnListResponse{Columns: toColumnResponses(result)}, nil
}

func (s *tableService) DeleteColumn(ctx context.Context, id, userID string) error {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Column, id, userID, ErrColumnNotFound)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		column, err := txRepo.Column.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrColumnNotFound)
		}
		if err := txRepo.Column.Delete(ctx, id); err != nil {
			return err
		}
		remaining, err := txRepo.Column.ListByDay(ctx, column.DayID)
		if err != nil {
			return err
		}
		return resequence(ctx, columnSiblings(remaining), 0, txRepo.Column.UpdateSortOrder)
	})
	if err != nil {
		if !errors.Is(err, ErrColumnNotFound) {
			s.logger.Error("删除列失败", zap.String("column_id", id), zap.Error(err))
		}
		return err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return nil
}

// ────────────────────── Row ──────────────────────

func (s *tableService) AddRow(ctx context.Context, req *dto.CreateRowRequest, userID string) (*dto.RowEnvelope, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Day, req.DayID, userID, ErrDayNotFound)
	if err != nil {
		return nil, err
	}

	var created *model.DayRow
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		count, err := txRepo.Row.CountByDay(ctx, req.DayID)
		if err != nil {
			return err
		}
		row := &model.DayRow{DayID: req.DayID, SortOrder: int(count)}
		if err := txRepo.Row.Create(ctx, row); err != nil {
			return err
		}

		columns, err := txRepo.Column.ListByDay(ctx, req.DayID)
		if err != nil {
			return err
		}
		cells := make([]model.DayCell, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, model.DayCell{RowID: row.ID, ColumnID: c.ID})
		}
		if err := txRepo.Cell.CreateBatch(ctx, cells); err != nil {
			return err
		}

		created, err = txRepo.Row.GetWithCells(ctx, row.ID)
		return err
	})
	if err != nil {
		s.logger.Error("新增行失败", zap.String("day_id", req.DayID), zap.Error(err))
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.RowEnvelope{Row: toRowResponse(created)}, nil
}

func (s *tableService) ReorderRow(ctx context.Context, req *dto.ReorderRowRequest, userID string) (*dto.RowListResponse, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Row, req.RowID, userID, ErrRowNotFound)
	if err != nil {
		return nil, err
	}

	var result []model.DayRow
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		row, err := txRepo.Row.GetByID(ctx, req.RowID)
		if err != nil {
			return notFoundAs(err, ErrRowNotFound)
		}
		rows, err := txRepo.Row.ListByDay(ctx, row.DayID)
		if err != nil {
			return err
		}
		ordered, ok := spliceSiblings(rowSiblings(rows), req.RowID, *req.Order)
		if !ok {
			return ErrRowNotFound
		}
		if err := resequence(ctx, ordered, 0, txRepo.Row.UpdateSortOrder); err != nil {
			return err
		}
		result, err = txRepo.Row.ListByDay(ctx, row.DayID)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrRowNotFound) {
			s.logger.Error("调整行顺序失败", zap.String("row_id", req.RowID), zap.Error(err))
		}
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.RowListResponse{Rows: toRowResponses(result)}, nil
}

func (s *tableService) DeleteRow(ctx context.Context, id, userID string) error {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Row, id, userID, ErrRowNotFound)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		row, err := txRepo.Row.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrRowNotFound)
		}
		if err := txRepo.Row.Delete(ctx, id); err != nil {
			return err
		}
		remaining, err := txRepo.Row.ListByDay(ctx, row.DayID)
		if err != nil {
			return err
		}
		return resequence(ctx, rowSiblings(remaining), 0, txRepo.Row.UpdateSortOrder)
	})
	if err != nil {
		if !errors.Is(err, ErrRowNotFound) {
			s.logger.Error("删除行失败", zap.String("row_id", id), zap.Error(err))
		}
		return err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return nil
}

// ────────────────────── Cell ──────────────────────

func (s *tableService) UpdateCell(ctx context.Context, req *dto.UpdateCellRequest, userID string) (*dto.CellEnvelope, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Cell, req.CellID, userID, ErrCellNotFound)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Cell.UpdateValue(ctx, req.CellID, req.Value); err != nil {
		s.logger.Error("更新单元格失败", zap.String("cell_id", req.CellID), zap.Error(err))
		return nil, err
	}
	s.trees.invalidate(ctx, owner.ProgramID)

	cell, err := s.repo.Cell.GetByID(ctx, req.CellID)
	if err != nil {
		return nil, notFoundAs(err, ErrCellNotFound)
	}
	return &dto.CellEnvelope{Cell: toCellResponse(cell)}, nil
}

func (s *tableService) UpsertCell(ctx context.Context, req *dto.UpsertCellRequest, userID string) (*dto.CellEnvelope, error) {
	owner, err := authorize(ctx, s.logger, s.repo.Access.Row, req.RowID, userID, ErrRowNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := authorize(ctx, s.logger, s.repo.Access.Column, req.ColumnID, userID, ErrColumnNotFound); err != nil {
		return nil, err
	}

	row, err := s.repo.Row.GetByID(ctx, req.RowID)
	if err != nil {
		return nil, notFoundAs(err, ErrRowNotFound)
	}
	column, err := s.repo.Column.GetByID(ctx, req.ColumnID)
	if err != nil {
		return nil, notFoundAs(err, ErrColumnNotFound)
	}
	if row.DayID != column.DayID {
		return nil, ErrColumnMismatch
	}

	cell, err := s.repo.Cell.Upsert(ctx, req.RowID, req.ColumnID, req.Value)
	if err != nil {
		s.logger.Error("写入单元格失败",
			zap.String("row_id", req.RowID),
			zap.String("column_id", req.ColumnID),
			zap.Error(err),
		)
		return nil, err
	}

	s.trees.invalidate(ctx, owner.ProgramID)
	return &dto.CellEnvelope{Cell: toCellResponse(cell)}, nil
}
