package liftclient

import (
	"context"

	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/internal/dto"
)

// Editor 组合 Client 与 Store：每个操作先调用 API，再把返回的实体合并进 Store，不整树刷新
//
// 重排是乐观的：先移动本地顺序再发送 PATCH，失败只记录日志，本地顺序不回滚。
type Editor struct {
	client *Client
	store  *Store
	logger *zap.Logger
}

// NewEditor 创建 Editor，logger 为 nil 时不记录日志
func NewEditor(client *Client, store *Store, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{client: client, store: store, logger: logger}
}

// Store 底层状态
func (e *Editor) Store() *Store { return e.store }

// ── 训练计划 ──

// LoadPrograms 拉取计划列表
func (e *Editor) LoadPrograms(ctx context.Context) ([]dto.ProgramSummary, error) {
	list, err := e.client.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	e.store.SetPrograms(list)
	return e.store.Programs(), nil
}

// OpenProgram 拉取并规范化完整计划树
func (e *Editor) OpenProgram(ctx context.Context, id string) (dto.ProgramTree, error) {
	tree, err := e.client.GetProgram(ctx, id)
	if err != nil {
		return dto.ProgramTree{}, err
	}
	e.store.Load(*tree)
	return *tree, nil
}

// CreateProgram 创建接口只返回 ID，随后读取新计划（此时为空树）
func (e *Editor) CreateProgram(ctx context.Context, name string) (string, error) {
	id, err := e.client.CreateProgram(ctx, name)
	if err != nil {
		return "", err
	}
	if _, err := e.OpenProgram(ctx, id); err != nil {
		return id, err
	}
	return id, nil
}

func (e *Editor) RenameProgram(ctx context.Context, id, name string) error {
	tree, err := e.client.RenameProgram(ctx, id, name)
	if err != nil {
		return err
	}
	e.store.Load(*tree)
	return nil
}

func (e *Editor) DeleteProgram(ctx context.Context, id string) error {
	if err := e.client.DeleteProgram(ctx, id); err != nil {
		return err
	}
	e.store.RemoveProgram(id)
	return nil
}

// ── 阶段 ──

func (e *Editor) AddBlock(ctx context.Context, programID, name string) (dto.BlockTree, error) {
	b, err := e.client.CreateBlock(ctx, programID, name)
	if err != nil {
		return dto.BlockTree{}, err
	}
	e.store.PutBlock(*b)
	return *b, nil
}

func (e *Editor) RenameBlock(ctx context.Context, id, name string) error {
	b, err := e.client.RenameBlock(ctx, id, name)
	if err != nil {
		return err
	}
	e.store.PutBlock(*b)
	return nil
}

// MoveBlock 乐观重排阶段
func (e *Editor) MoveBlock(ctx context.Context, id string, to int) error {
	e.store.MoveBlock(id, to)

	blocks, err := e.client.ReorderBlock(ctx, id, to)
	if err != nil {
		e.logger.Warn("阶段重排失败", zap.String("block_id", id), zap.Int("order", to), zap.Error(err))
		return err
	}
	e.store.SetBlocks(blocks)
	return nil
}

func (e *Editor) DeleteBlock(ctx context.Context, id string) error {
	if err := e.client.DeleteBlock(ctx, id); err != nil {
		return err
	}
	e.store.RemoveBlock(id)
	return nil
}

// ── 周 / 日 ──

func (e *Editor) AddWeek(ctx context.Context, blockID string) (dto.WeekTree, error) {
	w, err := e.client.CreateWeek(ctx, blockID)
	if err != nil {
		return dto.WeekTree{}, err
	}
	e.store.PutWeek(*w)
	return *w, nil
}

func (e *Editor) DeleteWeek(ctx context.Context, id string) error {
	if err := e.client.DeleteWeek(ctx, id); err != nil {
		return err
	}
	e.store.RemoveWeek(id)
	return nil
}

func (e *Editor) AddDay(ctx context.Context, req dto.CreateDayRequest) (dto.DayTree, error) {
	d, err := e.client.CreateDay(ctx, req)
	if err != nil {
		return dto.DayTree{}, err
	}
	e.store.PutDay(*d)
	return *d, nil
}

func (e *Editor) UpdateDay(ctx context.Context, req dto.UpdateDayRequest) (dto.DayTree, error) {
	d, err := e.client.UpdateDay(ctx, req)
	if err != nil {
		return dto.DayTree{}, err
	}
	e.store.PutDay(*d)
	return *d, nil
}

func (e *Editor) DeleteDay(ctx context.Context, id string) error {
	if err := e.client.DeleteDay(ctx, id); err != nil {
		return err
	}
	e.store.RemoveDay(id)
	return nil
}

// ── 表格 ──

func (e *Editor) AddColumn(ctx context.Context, dayID, name string) (dto.ColumnResponse, error) {
	c, err := e.client.AddColumn(ctx, dayID, name)
	if err != nil {
		return dto.ColumnResponse{}, err
	}
	e.store.PutColumn(*c)
	return *c, nil
}

func (e *Editor) RenameColumn(ctx context.Context, id, name string) error {
	c, err := e.client.RenameColumn(ctx, id, name)
	if err != nil {
		return err
	}
	e.store.PutColumn(*c)
	return nil
}

// MoveColumn 乐观重排列
func (e *Editor) MoveColumn(ctx context.Context, id string, to int) error {
	e.store.MoveColumn(id, to)

	columns, err := e.client.ReorderColumn(ctx, id, to)
	if err != nil {
		e.logger.Warn("列重排失败", zap.String("column_id", id), zap.Int("order", to), zap.Error(err))
		return err
	}
	e.store.SetColumns(columns)
	return nil
}

func (e *Editor) DeleteColumn(ctx context.Context, id string) error {
	if err := e.client.DeleteColumn(ctx, id); err != nil {
		return err
	}
	e.store.RemoveColumn(id)
	return nil
}

func (e *Editor) AddRow(ctx context.Context, dayID string) (dto.RowResponse, error) {
	r, err := e.client.AddRow(ctx, dayID)
	if err != nil {
		return dto.RowResponse{}, err
	}
	e.store.PutRow(*r)
	return *r, nil
}

// MoveRow 乐观重排行
func (e *Editor) MoveRow(ctx context.Context, id string, to int) error {
	e.store.MoveRow(id, to)

	rows, err := e.client.ReorderRow(ctx, id, to)
	if err != nil {
		e.logger.Warn("行重排失败", zap.String("row_id", id), zap.Int("order", to), zap.Error(err))
		return err
	}
	e.store.SetRows(rows)
	return nil
}

func (e *Editor) DeleteRow(ctx context.Context, id string) error {
	if err := e.client.DeleteRow(ctx, id); err != nil {
		return err
	}
	e.store.RemoveRow(id)
	return nil
}

// SetCell 写入 (行, 列) 单元格
func (e *Editor) SetCell(ctx context.Context, rowID, columnID, value string) (dto.CellResponse, error) {
	c, err := e.client.UpsertCell(ctx, rowID, columnID, value)
	if err != nil {
		return dto.CellResponse{}, err
	}
	e.store.PutCell(*c)
	return *c, nil
}

// CellAutosaver 返回绑定到 (行, 列) 单元格的自动保存器，初始值取自 Store
func (e *Editor) CellAutosaver(rowID, columnID string, opts ...AutosaveOption) *Autosaver {
	initial := ""
	if c, ok := e.store.CellAt(rowID, columnID); ok {
		initial = c.Value
	}
	opts = append([]AutosaveOption{WithAutosaveLogger(e.logger)}, opts...)
	return NewAutosaver(initial, func(ctx context.Context, value string) error {
		_, err := e.SetCell(ctx, rowID, columnID, value)
		return err
	}, opts...)
}
