package liftclient

import (
	"cmp"
	"slices"
	"sync"

	"github.com/artisenpaiii/liftlog/internal/dto"
)

// Store 规范化的本地状态：实体按 ID 存放，层级关系以有序 ID 列表表示
//
// 实体副本中的嵌套切片（Blocks / Weeks / Days / Columns / Rows / Cells）始终为 nil，
// 子项只通过关系列表查找；Tree 负责还原嵌套结构。Store 可并发使用。
type Store struct {
	mu sync.RWMutex

	programs map[string]dto.ProgramSummary
	blocks   map[string]dto.BlockTree
	weeks    map[string]dto.WeekTree
	days     map[string]dto.DayTree
	columns  map[string]dto.ColumnResponse
	rows     map[string]dto.RowResponse
	cells    map[string]dto.CellResponse

	programList   []string
	programBlocks map[string][]string
	blockWeeks    map[string][]string
	weekDays      map[string][]string
	dayColumns    map[string][]string
	dayRows       map[string][]string
	rowCells      map[string][]string
}

// NewStore 创建空 Store
func NewStore() *Store {
	return &Store{
		programs:      make(map[string]dto.ProgramSummary),
		blocks:        make(map[string]dto.BlockTree),
		weeks:         make(map[string]dto.WeekTree),
		days:          make(map[string]dto.DayTree),
		columns:       make(map[string]dto.ColumnResponse),
		rows:          make(map[string]dto.RowResponse),
		cells:         make(map[string]dto.CellResponse),
		programBlocks: make(map[string][]string),
		blockWeeks:    make(map[string][]string),
		weekDays:      make(map[string][]string),
		dayColumns:    make(map[string][]string),
		dayRows:       make(map[string][]string),
		rowCells:      make(map[string][]string),
	}
}

// ════════════════════════════ 写入 ════════════════════════════

// SetPrograms 以服务端列表替换计划列表，不在列表中的计划连同子树一并移除
func (s *Store) SetPrograms(list []dto.ProgramSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]bool, len(list))
	ids := make([]string, 0, len(list))
	for _, p := range list {
		keep[p.ID] = true
		ids = append(ids, p.ID)
		s.programs[p.ID] = p
	}
	for _, id := range s.programList {
		if !keep[id] {
			s.removeProgram(id)
		}
	}
	s.programList = ids
}

// Load 规范化一棵完整计划树，替换该计划已有的全部子项
func (s *Store) Load(tree dto.ProgramTree) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := tree.ID
	for _, bid := range s.programBlocks[id] {
		s.removeBlock(bid)
	}
	delete(s.programBlocks, id)

	s.programs[id] = tree.ProgramSummary
	if !slices.Contains(s.programList, id) {
		// 列表按创建时间倒序
		s.programList = slices.Insert(s.programList, 0, id)
	}
	for _, b := range tree.Blocks {
		s.putBlock(b)
	}
}

// PutBlock 合并服务端返回的阶段；Weeks 非 nil 时替换其子树
func (s *Store) PutBlock(b dto.BlockTree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putBlock(b)
}

// SetBlocks 合并重排接口返回的完整阶段列表
func (s *Store) SetBlocks(blocks []dto.BlockTree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range blocks {
		s.putBlock(b)
	}
}

// PutWeek 合并训练周；Days 非 nil 时替换其子树
func (s *Store) PutWeek(w dto.WeekTree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putWeek(w)
}

// PutDay 合并训练日；Columns / Rows 非 nil 时替换对应子项
func (s *Store) PutDay(d dto.DayTree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putDay(d)
}

func (s *Store) PutColumn(c dto.ColumnResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putColumn(c)
}

// SetColumns 合并重排接口返回的完整列列表
func (s *Store) SetColumns(columns []dto.ColumnResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range columns {
		s.putColumn(c)
	}
}

// PutRow 合并表格行；Cells 非 nil 时替换其单元格
func (s *Store) PutRow(r dto.RowResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putRow(r)
}

// SetRows 合并重排接口返回的完整行列表
func (s *Store) SetRows(rows []dto.RowResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.putRow(r)
	}
}

func (s *Store) PutCell(c dto.CellResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCell(c)
}

// ── 删除：同时移除全部后代，并按服务端规则重排同级 ──

func (s *Store) RemoveProgram(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeProgram(id)
	s.programList = removeID(s.programList, id)
}

func (s *Store) RemoveBlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blocks[id]
	if !ok {
		return
	}
	s.removeBlock(id)
	s.programBlocks[b.ProgramID] = removeID(s.programBlocks[b.ProgramID], id)
	s.resequenceBlocks(b.ProgramID)
}

func (s *Store) RemoveWeek(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.weeks[id]
	if !ok {
		return
	}
	s.removeWeek(id)
	s.blockWeeks[w.BlockID] = removeID(s.blockWeeks[w.BlockID], id)
	for i, wid := range s.blockWeeks[w.BlockID] {
		week := s.weeks[wid]
		week.WeekNumber = i + 1
		s.weeks[wid] = week
	}
}

func (s *Store) RemoveDay(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.days[id]
	if !ok {
		return
	}
	s.removeDay(id)
	s.weekDays[d.WeekID] = removeID(s.weekDays[d.WeekID], id)
	for i, did := range s.weekDays[d.WeekID] {
		day := s.days[did]
		day.DayNumber = i + 1
		s.days[did] = day
	}
}

// RemoveColumn 移除列及其在各行中的单元格
func (s *Store) RemoveColumn(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.columns[id]
	if !ok {
		return
	}
	for _, rid := range s.dayRows[c.DayID] {
		for _, cid := range s.rowCells[rid] {
			if s.cells[cid].ColumnID == id {
				delete(s.cells, cid)
				s.rowCells[rid] = removeID(s.rowCells[rid], cid)
				break
			}
		}
	}
	delete(s.columns, id)
	s.dayColumns[c.DayID] = removeID(s.dayColumns[c.DayID], id)
	s.resequenceColumns(c.DayID)
}

func (s *Store) RemoveRow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok {
		return
	}
	s.removeRow(id)
	s.dayRows[r.DayID] = removeID(s.dayRows[r.DayID], id)
	s.resequenceRows(r.DayID)
}

// ── 本地重排：移动 ID 并改写 order，目标下标越界时夹取 ──

// MoveBlock 将阶段移动到同级第 to 位，返回是否找到该阶段
func (s *Store) MoveBlock(id string, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blocks[id]
	if !ok {
		return false
	}
	s.programBlocks[b.ProgramID] = spliceID(s.programBlocks[b.ProgramID], id, to)
	s.resequenceBlocks(b.ProgramID)
	return true
}

func (s *Store) MoveColumn(id string, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.columns[id]
	if !ok {
		return false
	}
	s.dayColumns[c.DayID] = spliceID(s.dayColumns[c.DayID], id, to)
	s.resequenceColumns(c.DayID)
	return true
}

func (s *Store) MoveRow(id string, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok {
		return false
	}
	s.dayRows[r.DayID] = spliceID(s.dayRows[r.DayID], id, to)
	s.resequenceRows(r.DayID)
	return true
}

// ════════════════════════════ 读取 ════════════════════════════

// Programs 计划列表（与服务端顺序一致）
func (s *Store) Programs() []dto.ProgramSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.ProgramSummary, 0, len(s.programList))
	for _, id := range s.programList {
		out = append(out, s.programs[id])
	}
	return out
}

func (s *Store) Block(id string) (dto.BlockTree, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	return b, ok
}

func (s *Store) Week(id string) (dto.WeekTree, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weeks[id]
	return w, ok
}

func (s *Store) Day(id string) (dto.DayTree, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.days[id]
	return d, ok
}

func (s *Store) Column(id string) (dto.ColumnResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[id]
	return c, ok
}

func (s *Store) Cell(id string) (dto.CellResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cells[id]
	return c, ok
}

// CellAt 按 (行, 列) 查找单元格
func (s *Store) CellAt(rowID, columnID string) (dto.CellResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cid := range s.rowCells[rowID] {
		if c := s.cells[cid]; c.ColumnID == columnID {
			return c, true
		}
	}
	return dto.CellResponse{}, false
}

// Blocks 计划下的阶段（按顺序，不含子树）
func (s *Store) Blocks(programID string) []dto.BlockTree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.programBlocks[programID], s.blocks)
}

// Columns 训练日的列（按顺序）
func (s *Store) Columns(dayID string) []dto.ColumnResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.dayColumns[dayID], s.columns)
}

// Rows 训练日的行（按顺序，含单元格）
func (s *Store) Rows(dayID string) []dto.RowResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.RowResponse, 0, len(s.dayRows[dayID]))
	for _, rid := range s.dayRows[dayID] {
		out = append(out, s.rowTree(rid))
	}
	return out
}

// Tree 还原完整计划树
func (s *Store) Tree(programID string) (dto.ProgramTree, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[programID]
	if !ok {
		return dto.ProgramTree{}, false
	}

	tree := dto.ProgramTree{ProgramSummary: p, Blocks: make([]dto.BlockTree, 0, len(s.programBlocks[programID]))}
	for _, bid := range s.programBlocks[programID] {
		b := s.blocks[bid]
		b.Weeks = make([]dto.WeekTree, 0, len(s.blockWeeks[bid]))
		for _, wid := range s.blockWeeks[bid] {
			w := s.weeks[wid]
			w.Days = make([]dto.DayTree, 0, len(s.weekDays[wid]))
			for _, did := range s.weekDays[wid] {
				w.Days = append(w.Days, s.dayTree(did))
			}
			b.Weeks = append(b.Weeks, w)
		}
		tree.Blocks = append(tree.Blocks, b)
	}
	return tree, true
}

// ════════════════════════════ 内部实现（调用方持有写锁） ════════════════════════════

func (s *Store) putBlock(b dto.BlockTree) {
	weeks := b.Weeks
	b.Weeks = nil
	s.blocks[b.ID] = b
	s.programBlocks[b.ProgramID] = appendID(s.programBlocks[b.ProgramID], b.ID)
	sortIDs(s.programBlocks[b.ProgramID], func(id string) int { return s.blocks[id].Order })

	if weeks != nil {
		for _, wid := range s.blockWeeks[b.ID] {
			s.removeWeek(wid)
		}
		delete(s.blockWeeks, b.ID)
		for _, w := range weeks {
			s.putWeek(w)
		}
	}
}

func (s *Store) putWeek(w dto.WeekTree) {
	days := w.Days
	w.Days = nil
	s.weeks[w.ID] = w
	s.blockWeeks[w.BlockID] = appendID(s.blockWeeks[w.BlockID], w.ID)
	sortIDs(s.blockWeeks[w.BlockID], func(id string) int { return s.weeks[id].WeekNumber })

	if days != nil {
		for _, did := range s.weekDays[w.ID] {
			s.removeDay(did)
		}
		delete(s.weekDays, w.ID)
		for _, d := range days {
			s.putDay(d)
		}
	}
}

func (s *Store) putDay(d dto.DayTree) {
	columns, rows := d.Columns, d.Rows
	d.Columns, d.Rows = nil, nil
	s.days[d.ID] = d
	s.weekDays[d.WeekID] = appendID(s.weekDays[d.WeekID], d.ID)
	sortIDs(s.weekDays[d.WeekID], func(id string) int { return s.days[id].DayNumber })

	if columns != nil {
		for _, cid := range s.dayColumns[d.ID] {
			delete(s.columns, cid)
		}
		delete(s.dayColumns, d.ID)
		for _, c := range columns {
			s.putColumn(c)
		}
	}
	if rows != nil {
		for _, rid := range s.dayRows[d.ID] {
			s.removeRow(rid)
		}
		delete(s.dayRows, d.ID)
		for _, r := range rows {
			s.putRow(r)
		}
	}
}

func (s *Store) putColumn(c dto.ColumnResponse) {
	s.columns[c.ID] = c
	s.dayColumns[c.DayID] = appendID(s.dayColumns[c.DayID], c.ID)
	sortIDs(s.dayColumns[c.DayID], func(id string) int { return s.columns[id].Order })
}

func (s *Store) putRow(r dto.RowResponse) {
	cells := r.Cells
	r.Cells = nil
	s.rows[r.ID] = r
	s.dayRows[r.DayID] = appendID(s.dayRows[r.DayID], r.ID)
	sortIDs(s.dayRows[r.DayID], func(id string) int { return s.rows[id].Order })

	if cells != nil {
		for _, cid := range s.rowCells[r.ID] {
			delete(s.cells, cid)
		}
		delete(s.rowCells, r.ID)
		for _, c := range cells {
			s.putCell(c)
		}
	}
}

// putCell 同一 (行, 列) 只保留一个单元格
func (s *Store) putCell(c dto.CellResponse) {
	for _, cid := range s.rowCells[c.RowID] {
		if cid != c.ID && s.cells[cid].ColumnID == c.ColumnID {
			delete(s.cells, cid)
			s.rowCells[c.RowID] = removeID(s.rowCells[c.RowID], cid)
			break
		}
	}
	s.cells[c.ID] = c
	s.rowCells[c.RowID] = appendID(s.rowCells[c.RowID], c.ID)
}

func (s *Store) removeProgram(id string) {
	for _, bid := range s.programBlocks[id] {
		s.removeBlock(bid)
	}
	delete(s.programBlocks, id)
	delete(s.programs, id)
}

func (s *Store) removeBlock(id string) {
	for _, wid := range s.blockWeeks[id] {
		s.removeWeek(wid)
	}
	delete(s.blockWeeks, id)
	delete(s.blocks, id)
}

func (s *Store) removeWeek(id string) {
	for _, did := range s.weekDays[id] {
		s.removeDay(did)
	}
	delete(s.weekDays, id)
	delete(s.weeks, id)
}

func (s *Store) removeDay(id string) {
	for _, cid := range s.dayColumns[id] {
		delete(s.columns, cid)
	}
	for _, rid := range s.dayRows[id] {
		s.removeRow(rid)
	}
	delete(s.dayColumns, id)
	delete(s.dayRows, id)
	delete(s.days, id)
}

func (s *Store) removeRow(id string) {
	for _, cid := range s.rowCells[id] {
		delete(s.cells, cid)
	}
	delete(s.rowCells, id)
	delete(s.rows, id)
}

func (s *Store) resequenceBlocks(programID string) {
	for i, id := range s.programBlocks[programID] {
		b := s.blocks[id]
		b.Order = i
		s.blocks[id] = b
	}
}

func (s *Store) resequenceColumns(dayID string) {
	for i, id := range s.dayColumns[dayID] {
		c := s.columns[id]
		c.Order = i
		s.columns[id] = c
	}
}

func (s *Store) resequenceRows(dayID string) {
	for i, id := range s.dayRows[dayID] {
		r := s.rows[id]
		r.Order = i
		s.rows[id] = r
	}
}

// 以下读取辅助函数要求调用方至少持有读锁

func (s *Store) dayTree(id string) dto.DayTree {
	d := s.days[id]
	d.Columns = collect(s.dayColumns[id], s.columns)
	d.Rows = make([]dto.RowResponse, 0, len(s.dayRows[id]))
	for _, rid := range s.dayRows[id] {
		d.Rows = append(d.Rows, s.rowTree(rid))
	}
	return d
}

func (s *Store) rowTree(id string) dto.RowResponse {
	r := s.rows[id]
	r.Cells = collect(s.rowCells[id], s.cells)
	return r
}

// ── ID 列表辅助 ──

func collect[T any](ids []string, m map[string]T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func appendID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

func sortIDs(ids []string, key func(string) int) {
	slices.SortStableFunc(ids, func(a, b string) int { return cmp.Compare(key(a), key(b)) })
}

// spliceID 将 id 移到下标 to（夹取到 [0, n-1]），未找到时原样返回
func spliceID(ids []string, id string, to int) []string {
	from := slices.Index(ids, id)
	if from < 0 {
		return ids
	}
	out := slices.Delete(slices.Clone(ids), from, from+1)
	to = max(0, min(to, len(out)))
	return slices.Insert(out, to, id)
}
