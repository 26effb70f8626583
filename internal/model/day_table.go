package model

import "gorm.io/gorm"

// ── 训练日表格：列 / 行 / 单元格 ──

// DayColumn 训练日表格列 — 对应 day_columns
type DayColumn struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	DayID     string `gorm:"type:uuid;not null;index"`
	Name      string `gorm:"type:varchar(100);not null"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
	BaseModel

	// 关联
	Cells []DayCell `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (DayColumn) TableName() string { return "day_columns" }

func (c *DayColumn) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// DayRow 训练日表格行 — 对应 day_rows
type DayRow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	DayID     string `gorm:"type:uuid;not null;index"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
	BaseModel

	// 关联
	Cells []DayCell `gorm:"foreignKey:RowID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (DayRow) TableName() string { return "day_rows" }

func (r *DayRow) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// DayCell 单元格 — 对应 day_cells，(row_id, column_id) 唯一
type DayCell struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	RowID    string `gorm:"type:uuid;not null;uniqueIndex:idx_day_cells_row_column"`
	ColumnID string `gorm:"type:uuid;not null;uniqueIndex:idx_day_cells_row_column;index"`
	Value    string `gorm:"type:varchar(500);not null;default:''"`
	BaseModel
}

// TableName 指定表名
func (DayCell) TableName() string { return "day_cells" }

func (c *DayCell) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// AllModels AutoMigrate 使用的模型列表（按依赖顺序）
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Program{}, &Block{}, &Week{}, &Day{},
		&DayColumn{}, &DayRow{}, &DayCell{},
	}
}
