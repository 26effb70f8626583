package repository

import (
	"context"

	"gorm.io/gorm"
)

// Ownership 实体所属的训练计划及其创建者
type Ownership struct {
	ProgramID string
	OwnerID   string
}

// AccessRepository 沿层级联表解析实体归属，实体不存在时返回 gorm.ErrRecordNotFound
type AccessRepository interface {
	Program(ctx context.Context, id string) (*Ownership, error)
	Block(ctx context.Context, id string) (*Ownership, error)
	Week(ctx context.Context, id string) (*Ownership, error)
	Day(ctx context.Context, id string) (*Ownership, error)
	Column(ctx context.Context, id string) (*Ownership, error)
	Row(ctx context.Context, id string) (*Ownership, error)
	Cell(ctx context.Context, id string) (*Ownership, error)
}

type accessRepo struct {
	db *gorm.DB
}

// NewAccessRepo 创建 AccessRepository 实例
func NewAccessRepo(db *gorm.DB) AccessRepository {
	return &accessRepo{db: db}
}

const (
	joinProgram = "JOIN programs p ON p.id = b.program_id"
	joinBlock   = "JOIN blocks b ON b.id = w.block_id"
	joinWeek    = "JOIN weeks w ON w.id = d.week_id"
)

// resolve 从 table（带别名）出发逐级 JOIN 至 programs
func (r *accessRepo) resolve(ctx context.Context, table, idColumn, id string, joins ...string) (*Ownership, error) {
	q := r.db.WithContext(ctx).
		Table(table).
		Select("p.id AS program_id, p.created_by AS owner_id")
	for _, j := range joins {
		q = q.Joins(j)
	}

	var o Ownership
	if err := q.Where(idColumn+" = ?", id).Take(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *accessRepo) Program(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "programs p", "p.id", id)
}

func (r *accessRepo) Block(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "blocks b", "b.id", id, joinProgram)
}

func (r *accessRepo) Week(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "weeks w", "w.id", id, joinBlock, joinProgram)
}

func (r *accessRepo) Day(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "days d", "d.id", id, joinWeek, joinBlock, joinProgram)
}

func (r *accessRepo) Column(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "day_columns dc", "dc.id", id,
		"JOIN days d ON d.id = dc.day_id", joinWeek, joinBlock, joinProgram)
}

func (r *accessRepo) Row(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "day_rows dr", "dr.id", id,
		"JOIN days d ON d.id = dr.day_id", joinWeek, joinBlock, joinProgram)
}

func (r *accessRepo) Cell(ctx context.Context, id string) (*Ownership, error) {
	return r.resolve(ctx, "day_cells c", "c.id", id,
		"JOIN day_rows dr ON dr.id = c.row_id",
		"JOIN days d ON d.id = dr.day_id", joinWeek, joinBlock, joinProgram)
}
