package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artisenpaiii/liftlog/internal/model"
)

// ── DayColumn ──

// ColumnRepository 训练日表格列数据访问接口
type ColumnRepository interface {
	Create(ctx context.Context, column *model.DayColumn) error
	GetByID(ctx context.Context, id string) (*model.DayColumn, error)
	ListByDay(ctx context.Context, dayID string) ([]model.DayColumn, error)
	CountByDay(ctx context.Context, dayID string) (int64, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateSortOrder(ctx context.Context, id string, order int) error
	// Delete 删除列及引用该列的单元格，需在事务中调用
	Delete(ctx context.Context, id string) error
}

type columnRepo struct {
	db *gorm.DB
}

// NewColumnRepo 创建 ColumnRepository 实例
func NewColumnRepo(db *gorm.DB) ColumnRepository {
	return &columnRepo{db: db}
}

func (r *columnRepo) Create(ctx context.Context, column *model.DayColumn) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *columnRepo) GetByID(ctx context.Context, id string) (*model.DayColumn, error) {
	var column model.DayColumn
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&column).Error
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *columnRepo) ListByDay(ctx context.Context, dayID string) ([]model.DayColumn, error) {
	var columns []model.DayColumn
	err := r.db.WithContext(ctx).
		Where("day_id = ?", dayID).
		Order(siblingOrder).
		Find(&columns).Error
	return columns, err
}

func (r *columnRepo) CountByDay(ctx context.Context, dayID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DayColumn{}).
		Where("day_id = ?", dayID).
		Count(&count).Error
	return count, err
}

func (r *columnRepo) UpdateName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).
		Model(&model.DayColumn{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *columnRepo) UpdateSortOrder(ctx context.Context, id string, order int) error {
	return r.db.WithContext(ctx).
		Model(&model.DayColumn{}).
		Where("id = ?", id).
		Update("sort_order", order).Error
}

func (r *columnRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("column_id = ?", id).Delete(&model.DayCell{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.DayColumn{}).Error
}

// ── DayRow ──

// RowRepository 训练日表格行数据访问接口
type RowRepository interface {
	Create(ctx context.Context, row *model.DayRow) error
	GetByID(ctx context.Context, id string) (*model.DayRow, error)
	// GetWithCells 加载行及其单元格
	GetWithCells(ctx context.Context, id string) (*model.DayRow, error)
	ListByDay(ctx context.Context, dayID string) ([]model.DayRow, error)
	CountByDay(ctx context.Context, dayID string) (int64, error)
	UpdateSortOrder(ctx context.Context, id string, order int) error
	// Delete 删除行及其单元格，需在事务中调用
	Delete(ctx context.Context, id string) error
}

type rowRepo struct {
	db *gorm.DB
}

// NewRowRepo 创建 RowRepository 实例
func NewRowRepo(db *gorm.DB) RowRepository {
	return &rowRepo{db: db}
}

func (r *rowRepo) Create(ctx context.Context, row *model.DayRow) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *rowRepo) GetByID(ctx context.Context, id string) (*model.DayRow, error) {
	var row model.DayRow
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *rowRepo) GetWithCells(ctx context.Context, id string) (*model.DayRow, error) {
	var row model.DayRow
	err := r.db.WithContext(ctx).
		Preload("Cells", orderBy("created_at ASC, id ASC")).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *rowRepo) ListByDay(ctx context.Context, dayID string) ([]model.DayRow, error) {
	var rows []model.DayRow
	err := r.db.WithContext(ctx).
		Where("day_id = ?", dayID).
		Order(siblingOrder).
		Find(&rows).Error
	return rows, err
}

func (r *rowRepo) CountByDay(ctx context.Context, dayID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DayRow{}).
		Where("day_id = ?", dayID).
		Count(&count).Error
	return count, err
}

func (r *rowRepo) UpdateSortOrder(ctx context.Context, id string, order int) error {
	return r.db.WithContext(ctx).
		Model(&model.DayRow{}).
		Where("id = ?", id).
		Update("sort_order", order).Error
}

func (r *rowRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("row_id = ?", id).Delete(&model.DayCell{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.DayRow{}).Error
}

// ── DayCell ──

// CellRepository 单元格数据访问接口
type CellRepository interface {
	CreateBatch(ctx context.Context, cells []model.DayCell) error
	GetByID(ctx context.Context, id string) (*model.DayCell, error)
	UpdateValue(ctx context.Context, id, value string) error
	// Upsert 按 (row_id, column_id) 插入或更新，返回持久化后的单元格
	Upsert(ctx context.Context, rowID, columnID, value string) (*model.DayCell, error)
}

type cellRepo struct {
	db *gorm.DB
}

// NewCellRepo 创建 CellRepository 实例
func NewCellRepo(db *gorm.DB) CellRepository {
	return &cellRepo{db: db}
}

func (r *cellRepo) CreateBatch(ctx context.Context, cells []model.DayCell) error {
	if len(cells) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cells).Error
}

func (r *cellRepo) GetByID(ctx context.Context, id string) (*model.DayCell, error) {
	var cell model.DayCell
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&cell).Error
	if err != nil {
		return nil, err
	}
	return &cell, nil
}

func (r *cellRepo) UpdateValue(ctx context.Context, id, value string) error {
	return r.db.WithContext(ctx).
		Model(&model.DayCell{}).
		Where("id = ?", id).
		Update("value", value).Error
}

func (r *cellRepo) Upsert(ctx context.Context, rowID, columnID, value string) (*model.DayCell, error) {
	db := r.db.WithContext(ctx)

	cell := &model.DayCell{RowID: rowID, ColumnID: columnID, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "row_id"}, {Name: "column_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(cell).Error
	if err != nil {
		return nil, err
	}

	// 冲突更新时主键仍为原记录，重新读取
	var saved model.DayCell
	err = db.Where("row_id = ? AND column_id = ?", rowID, columnID).First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
