package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ensureID 主键为空时生成 UUID，PostgreSQL 侧另有 gen_random_uuid() 默认值
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}
