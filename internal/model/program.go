package model

import "gorm.io/gorm"

// Program 训练计划表 — 对应 programs
type Program struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	CreatedBy string `gorm:"type:uuid;not null;index"`
	BaseModel

	// 关联
	Owner  *User   `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE"`
	Blocks []Block `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Program) TableName() string { return "programs" }

func (p *Program) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Block 训练阶段表 — 对应 blocks，SortOrder 从 0 开始连续
type Block struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ProgramID string `gorm:"type:uuid;not null;index"`
	Name      string `gorm:"type:varchar(100);not null"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
	BaseModel

	// 关联
	Weeks []Week `gorm:"foreignKey:BlockID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Block) TableName() string { return "blocks" }

func (b *Block) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Week 训练周表 — 对应 weeks，WeekNumber 从 1 开始连续
type Week struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	BlockID    string `gorm:"type:uuid;not null;index"`
	WeekNumber int    `gorm:"not null"`
	BaseModel

	// 关联
	Days []Day `gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Week) TableName() string { return "weeks" }

func (w *Week) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}

// Day 训练日表 — 对应 days，DayNumber 从 1 开始连续
type Day struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	WeekID    string  `gorm:"type:uuid;not null;index"`
	DayNumber int     `gorm:"not null"`
	Name      *string `gorm:"type:varchar(100)"`
	Notes     *string `gorm:"type:text"`
	BaseModel

	// 关联
	Columns []DayColumn `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
	Rows    []DayRow    `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Day) TableName() string { return "days" }

func (d *Day) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
