package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/model"
)

// ProgramRepository 训练计划数据访问接口
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id string) (*model.Program, error)
	// GetTree 加载完整计划树：阶段 → 周 → 日 → 列/行 → 单元格，各级按序号排序
	GetTree(ctx context.Context, id string) (*model.Program, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Program, error)
	UpdateName(ctx context.Context, id, name string) error
	// Delete 级联删除计划及全部后代，需在事务中调用
	Delete(ctx context.Context, id string) error
}

// programRepo ProgramRepository 的 GORM 实现
type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo 创建 ProgramRepository 实例
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) GetTree(ctx context.Context, id string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Preload("Blocks", orderBy(siblingOrder)).
		Preload("Blocks.Weeks", orderBy("week_number ASC, created_at ASC")).
		Preload("Blocks.Weeks.Days", orderBy("day_number ASC, created_at ASC")).
		Preload("Blocks.Weeks.Days.Columns", orderBy(siblingOrder)).
		Preload("Blocks.Weeks.Days.Rows", orderBy(siblingOrder)).
		Preload("Blocks.Weeks.Days.Rows.Cells", orderBy("created_at ASC, id ASC")).
		Where("id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at DESC, id ASC").
		Find(&programs).Error
	return programs, err
}

func (r *programRepo) UpdateName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).
		Model(&model.Program{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *programRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := deleteBlocks(db, blockIDsOfProgram(db, id)); err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Program{}).Error
}

// orderBy Preload 排序条件
func orderBy(order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}
