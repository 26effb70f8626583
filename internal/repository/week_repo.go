package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/model"
)

// WeekRepository 训练周数据访问接口
type WeekRepository interface {
	Create(ctx context.Context, week *model.Week) error
	GetByID(ctx context.Context, id string) (*model.Week, error)
	ListByBlock(ctx context.Context, blockID string) ([]model.Week, error)
	// MaxNumber 阶段内最大周序号，无记录时为 0
	MaxNumber(ctx context.Context, blockID string) (int, error)
	UpdateNumber(ctx context.Context, id string, number int) error
	// Delete 级联删除训练周及全部训练日，需在事务中调用
	Delete(ctx context.Context, id string) error
}

// weekRepo WeekRepository 的 GORM 实现
type weekRepo struct {
	db *gorm.DB
}

// NewWeekRepo 创建 WeekRepository 实例
func NewWeekRepo(db *gorm.DB) WeekRepository {
	return &weekRepo{db: db}
}

func (r *weekRepo) Create(ctx context.Context, week *model.Week) error {
	return r.db.WithContext(ctx).Create(week).Error
}

func (r *weekRepo) GetByID(ctx context.Context, id string) (*model.Week, error) {
	var week model.Week
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *weekRepo) ListByBlock(ctx context.Context, blockID string) ([]model.Week, error) {
	var weeks []model.Week
	err := r.db.WithContext(ctx).
		Where("block_id = ?", blockID).
		Order("week_number ASC, created_at ASC, id ASC").
		Find(&weeks).Error
	return weeks, err
}

func (r *weekRepo) MaxNumber(ctx context.Context, blockID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Week{}).
		Where("block_id = ?", blockID).
		Select("COALESCE(MAX(week_number), 0)").
		Scan(&max).Error
	return max, err
}

func (r *weekRepo) UpdateNumber(ctx context.Context, id string, number int) error {
	return r.db.WithContext(ctx).
		Model(&model.Week{}).
		Where("id = ?", id).
		Update("week_number", number).Error
}

func (r *weekRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	return deleteWeeks(db, singleID(db, &model.Week{}, id))
}
