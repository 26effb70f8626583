package dto

// ── 训练计划 / 阶段 / 周 / 日 请求 ──

// CreateProgramRequest 创建训练计划
type CreateProgramRequest struct {
	Name string `json:"name" binding:"required,min=3,max=100"`
}

// RenameProgramRequest 重命名训练计划
type RenameProgramRequest struct {
	Name string `json:"name" binding:"required,min=3,max=100"`
}

// CreateBlockRequest 创建训练阶段
type CreateBlockRequest struct {
	ProgramID string `json:"programId" binding:"required,uuid"`
	Name      string `json:"name"      binding:"required,min=1,max=100"`
}

// RenameBlockRequest 重命名训练阶段
type RenameBlockRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ReorderBlockRequest 调整阶段顺序，Order 为目标下标（越界时夹取）
type ReorderBlockRequest struct {
	BlockID string `json:"blockId" binding:"required,uuid"`
	Order   *int   `json:"order"   binding:"required,min=0"`
}

// CreateWeekRequest 创建训练周
type CreateWeekRequest struct {
	BlockID string `json:"blockId" binding:"required,uuid"`
}

// CreateDayRequest 创建训练日，Columns 为初始表格列名
type CreateDayRequest struct {
	WeekID  string   `json:"weekId"  binding:"required,uuid"`
	Columns []string `json:"columns" binding:"omitempty,max=30,dive,max=100"`
	Name    *string  `json:"name"    binding:"omitempty,max=100"`
}

// UpdateDayRequest 更新训练日，nil 字段保持不变
type UpdateDayRequest struct {
	DayID string  `json:"dayId" binding:"required,uuid"`
	Name  *string `json:"name"  binding:"omitempty,max=100"`
	Notes *string `json:"notes" binding:"omitempty,max=10000"`
}

// ── 训练日表格请求 ──

// CreateColumnRequest 新增列
type CreateColumnRequest struct {
	DayID string `json:"dayId" binding:"required,uuid"`
	Name  string `json:"name"  binding:"required,min=1,max=100"`
}

// RenameColumnRequest 重命名列
type RenameColumnRequest struct {
	ColumnID string `json:"columnId" binding:"required,uuid"`
	Name     string `json:"name"     binding:"required,min=1,max=100"`
}

// ReorderColumnRequest 调整列顺序
type ReorderColumnRequest struct {
	ColumnID string `json:"columnId" binding:"required,uuid"`
	Order    *int   `json:"order"    binding:"required,min=0"`
}

// CreateRowRequest 新增行
type CreateRowRequest struct {
	DayID string `json:"dayId" binding:"required,uuid"`
}

// ReorderRowRequest 调整行顺序
type ReorderRowRequest struct {
	RowID string `json:"rowId" binding:"required,uuid"`
	Order *int   `json:"order" binding:"required,min=0"`
}

// UpdateCellRequest 更新单元格
type UpdateCellRequest struct {
	CellID string `json:"cellId" binding:"required,uuid"`
	Value  string `json:"value"  binding:"max=500"`
}

// UpsertCellRequest 按 (rowId, columnId) 写入单元格
type UpsertCellRequest struct {
	RowID    string `json:"rowId"    binding:"required,uuid"`
	ColumnID string `json:"columnId" binding:"required,uuid"`
	Value    string `json:"value"    binding:"max=500"`
}

// ExportCalendarRequest 导出日历查询参数
type ExportCalendarRequest struct {
	Start string `form:"start" binding:"required"`
}
