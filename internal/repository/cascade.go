package repository

import (
	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/model"
)

// ── 级联删除 ──
// 按子表优先的顺序显式删除后代数据，调用方负责包裹事务。

// siblingOrder 同级排序：sort_order 相同时按创建时间、ID 稳定排序
const siblingOrder = "sort_order ASC, created_at ASC, id ASC"

// idQuery 每次调用返回一条新的 ID 子查询
type idQuery func() *gorm.DB

func blockIDsOfProgram(db *gorm.DB, programID string) idQuery {
	return func() *gorm.DB {
		return db.Model(&model.Block{}).Select("id").Where("program_id = ?", programID)
	}
}

func weekIDsOfBlocks(db *gorm.DB, blockIDs idQuery) idQuery {
	return func() *gorm.DB {
		return db.Model(&model.Week{}).Select("id").Where("block_id IN (?)", blockIDs())
	}
}

func dayIDsOfWeeks(db *gorm.DB, weekIDs idQuery) idQuery {
	return func() *gorm.DB {
		return db.Model(&model.Day{}).Select("id").Where("week_id IN (?)", weekIDs())
	}
}

func singleID(db *gorm.DB, m interface{}, id string) idQuery {
	return func() *gorm.DB {
		return db.Model(m).Select("id").Where("id = ?", id)
	}
}

// deleteDays 删除训练日及其列、行、单元格
func deleteDays(db *gorm.DB, dayIDs idQuery) error {
	rowIDs := func() *gorm.DB {
		return db.Model(&model.DayRow{}).Select("id").Where("day_id IN (?)", dayIDs())
	}
	columnIDs := func() *gorm.DB {
		return db.Model(&model.DayColumn{}).Select("id").Where("day_id IN (?)", dayIDs())
	}

	if err := db.Where("row_id IN (?)", rowIDs()).Delete(&model.DayCell{}).Error; err != nil {
		return err
	}
	if err := db.Where("column_id IN (?)", columnIDs()).Delete(&model.DayCell{}).Error; err != nil {
		return err
	}
	if err := db.Where("day_id IN (?)", dayIDs()).Delete(&model.DayRow{}).Error; err != nil {
		return err
	}
	if err := db.Where("day_id IN (?)", dayIDs()).Delete(&model.DayColumn{}).Error; err != nil {
		return err
	}
	return db.Where("id IN (?)", dayIDs()).Delete(&model.Day{}).Error
}

// deleteWeeks 删除训练周及其全部训练日
func deleteWeeks(db *gorm.DB, weekIDs idQuery) error {
	if err := deleteDays(db, dayIDsOfWeeks(db, weekIDs)); err != nil {
		return err
	}
	return db.Where("id IN (?)", weekIDs()).Delete(&model.Week{}).Error
}

// deleteBlocks 删除训练阶段及其全部训练周
func deleteBlocks(db *gorm.DB, blockIDs idQuery) error {
	if err := deleteWeeks(db, weekIDsOfBlocks(db, blockIDs)); err != nil {
		return err
	}
	return db.Where("id IN (?)", blockIDs()).Delete(&model.Block{}).Error
}
