package dto

// ── 训练计划树响应 ──

// ProgramSummary 计划列表项
type ProgramSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ProgramTree 完整计划树
type ProgramTree struct {
	ProgramSummary
	Blocks []BlockTree `json:"blocks"`
}

// BlockTree 阶段及其训练周
type BlockTree struct {
	ID        string     `json:"id"`
	ProgramID string     `json:"programId"`
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Weeks     []WeekTree `json:"weeks"`
}

// WeekTree 训练周及其训练日
type WeekTree struct {
	ID         string    `json:"id"`
	BlockID    string    `json:"blockId"`
	WeekNumber int       `json:"weekNumber"`
	Days       []DayTree `json:"days"`
}

// DayTree 训练日及其表格
type DayTree struct {
	ID        string           `json:"id"`
	WeekID    string           `json:"weekId"`
	DayNumber int              `json:"dayNumber"`
	Name      *string          `json:"name"`
	Notes     *string          `json:"notes"`
	NotesHTML string           `json:"notesHtml,omitempty"`
	Columns   []ColumnResponse `json:"columns"`
	Rows      []RowResponse    `json:"rows"`
}

// ColumnResponse 表格列
type ColumnResponse struct {
	ID    string `json:"id"`
	DayID string `json:"dayId"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// RowResponse 表格行及其单元格
type RowResponse struct {
	ID    string         `json:"id"`
	DayID string         `json:"dayId"`
	Order int            `json:"order"`
	Cells []CellResponse `json:"cells"`
}

// CellResponse 单元格
type CellResponse struct {
	ID       string `json:"id"`
	RowID    string `json:"rowId"`
	ColumnID string `json:"columnId"`
	Value    string `json:"value"`
}

// ── 各接口响应包装 ──

// IDResponse POST /programs/new
type IDResponse struct {
	ID string `json:"id"`
}

// ProgramListResponse GET /programs
type ProgramListResponse struct {
	Programs []ProgramSummary `json:"programs"`
}

// ProgramResponse GET/PATCH /programs/:id
type ProgramResponse struct {
	Program ProgramTree `json:"program"`
}

// BlockResponse 单个阶段
type BlockResponse struct {
	Block BlockTree `json:"block"`
}

// BlockListResponse 重排后的阶段列表
type BlockListResponse struct {
	Blocks []BlockTree `json:"blocks"`
}

// WeekResponse 单个训练周
type WeekResponse struct {
	Week WeekTree `json:"week"`
}

// DayResponse 单个训练日
type DayResponse struct {
	Day DayTree `json:"day"`
}

// ColumnEnvelope 单个列
type ColumnEnvelope struct {
	Column ColumnResponse `json:"column"`
}

// ColumnListResponse 重排后的列
type ColumnListResponse struct {
	Columns []ColumnResponse `json:"columns"`
}

// RowEnvelope 单个行
type RowEnvelope struct {
	Row RowResponse `json:"row"`
}

// RowListResponse 重排后的行
type RowListResponse struct {
	Rows []RowResponse `json:"rows"`
}

// CellEnvelope 单个单元格
type CellEnvelope struct {
	Cell CellResponse `json:"cell"`
}
