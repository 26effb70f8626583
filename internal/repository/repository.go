package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User    UserRepository
	Program ProgramRepository
	Block   BlockRepository
	Week    WeekRepository
	Day     DayRepository
	Column  ColumnRepository
	Row     RowRepository
	Cell    CellRepository
	Access  AccessRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		User:    NewUserRepo(db),
		Program: NewProgramRepo(db),
		Block:   NewBlockRepo(db),
		Week:    NewWeekRepo(db),
		Day:     NewDayRepo(db),
		Column:  NewColumnRepo(db),
		Row:     NewRowRepo(db),
		Cell:    NewCellRepo(db),
		Access:  NewAccessRepo(db),
	}
}

// BeginTx 开启事务，未绑定数据库连接（单元测试中的 mock 聚合）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction 在单个事务中执行 fn，fn 返回错误或 panic 时回滚
// fn 内只能使用 txRepo，否则 SQLite 单连接测试环境会死锁
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
