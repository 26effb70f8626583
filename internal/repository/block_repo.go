package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/model"
)

// BlockRepository 训练阶段数据访问接口
type BlockRepository interface {
	Create(ctx context.Context, block *model.Block) error
	GetByID(ctx context.Context, id string) (*model.Block, error)
	ListByProgram(ctx context.Context, programID string) ([]model.Block, error)
	CountByProgram(ctx context.Context, programID string) (int64, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateSortOrder(ctx context.Context, id string, order int) error
	// Delete 级联删除阶段及全部后代，需在事务中调用
	Delete(ctx context.Context, id string) error
}

// blockRepo BlockRepository 的 GORM 实现
type blockRepo struct {
	db *gorm.DB
}

// NewBlockRepo 创建 BlockRepository 实例
func NewBlockRepo(db *gorm.DB) BlockRepository {
	return &blockRepo{db: db}
}

func (r *blockRepo) Create(ctx context.Context, block *model.Block) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *blockRepo) GetByID(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepo) ListByProgram(ctx context.Context, programID string) ([]model.Block, error) {
	var blocks []model.Block
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order(siblingOrder).
		Find(&blocks).Error
	return blocks, err
}

func (r *blockRepo) CountByProgram(ctx context.Context, programID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("program_id = ?", programID).
		Count(&count).Error
	return count, err
}

func (r *blockRepo) UpdateName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *blockRepo) UpdateSortOrder(ctx context.Context, id string, order int) error {
	return r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("id = ?", id).
		Update("sort_order", order).Error
}

func (r *blockRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	return deleteBlocks(db, singleID(db, &model.Block{}, id))
}
