package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/model"
)

// DayRepository 训练日数据访问接口
type DayRepository interface {
	Create(ctx context.Context, day *model.Day) error
	GetByID(ctx context.Context, id string) (*model.Day, error)
	// GetWithTable 加载训练日及其列、行、单元格
	GetWithTable(ctx context.Context, id string) (*model.Day, error)
	ListByWeek(ctx context.Context, weekID string) ([]model.Day, error)
	// MaxNumber 周内最大训练日序号，无记录时为 0
	MaxNumber(ctx context.Context, weekID string) (int, error)
	// UpdateFields 按字段更新名称 / 备注，fields 的键为列名
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateNumber(ctx context.Context, id string, number int) error
	// Delete 级联删除训练日及其表格，需在事务中调用
	Delete(ctx context.Context, id string) error
}

// dayRepo DayRepository 的 GORM 实现
type dayRepo struct {
	db *gorm.DB
}

// NewDayRepo 创建 DayRepository 实例
func NewDayRepo(db *gorm.DB) DayRepository {
	return &dayRepo{db: db}
}

func (r *dayRepo) Create(ctx context.Context, day *model.Day) error {
	return r.db.WithContext(ctx).Create(day).Error
}

func (r *dayRepo) GetByID(ctx context.Context, id string) (*model.Day, error) {
	var day model.Day
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *dayRepo) GetWithTable(ctx context.Context, id string) (*model.Day, error) {
	var day model.Day
	err := r.db.WithContext(ctx).
		Preload("Columns", orderBy(siblingOrder)).
		Preload("Rows", orderBy(siblingOrder)).
		Preload("Rows.Cells", orderBy("created_at ASC, id ASC")).
		Where("id = ?", id).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *dayRepo) ListByWeek(ctx context.Context, weekID string) ([]model.Day, error) {
	var days []model.Day
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("day_number ASC, created_at ASC, id ASC").
		Find(&days).Error
	return days, err
}

func (r *dayRepo) MaxNumber(ctx context.Context, weekID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Day{}).
		Where("week_id = ?", weekID).
		Select("COALESCE(MAX(day_number), 0)").
		Scan(&max).Error
	return max, err
}

func (r *dayRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Day{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *dayRepo) UpdateNumber(ctx context.Context, id string, number int) error {
	return r.db.WithContext(ctx).
		Model(&model.Day{}).
		Where("id = ?", id).
		Update("day_number", number).Error
}

func (r *dayRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	return deleteDays(db, singleID(db, &model.Day{}, id))
}
