package liftclient

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisenpaiii/liftlog/internal/dto"
)

func strPtr(s string) *string { return &s }

// sampleTree 一个计划 → 两个阶段；第一个阶段有两周，第一周第一天有 3 列 2 行
func sampleTree() dto.ProgramTree {
	cols := []dto.ColumnResponse{
		{ID: "c1", DayID: "d1", Name: "Exercise", Order: 0},
		{ID: "c2", DayID: "d1", Name: "Sets", Order: 1},
		{ID: "c3", DayID: "d1", Name: "Reps", Order: 2},
	}
	rows := []dto.RowResponse{
		{ID: "r1", DayID: "d1", Order: 0, Cells: []dto.CellResponse{
			{ID: "x11", RowID: "r1", ColumnID: "c1", Value: "Squat"},
			{ID: "x12", RowID: "r1", ColumnID: "c2", Value: "5"},
			{ID: "x13", RowID: "r1", ColumnID: "c3", Value: "5"},
		}},
		{ID: "r2", DayID: "d1", Order: 1, Cells: []dto.CellResponse{
			{ID: "x21", RowID: "r2", ColumnID: "c1", Value: "Bench"},
		}},
	}

	return dto.ProgramTree{
		ProgramSummary: dto.ProgramSummary{ID: "p1", Name: "Strength", CreatedBy: "u1"},
		Blocks: []dto.BlockTree{
			{ID: "b2", ProgramID: "p1", Name: "Peak", Order: 1, Weeks: []dto.WeekTree{}},
			{ID: "b1", ProgramID: "p1", Name: "Base", Order: 0, Weeks: []dto.WeekTree{
				{ID: "w1", BlockID: "b1", WeekNumber: 1, Days: []dto.DayTree{
					{ID: "d1", WeekID: "w1", DayNumber: 1, Name: strPtr("Heavy"), Columns: cols, Rows: rows},
					{ID: "d2", WeekID: "w1", DayNumber: 2, Columns: []dto.ColumnResponse{}, Rows: []dto.RowResponse{}},
				}},
				{ID: "w2", BlockID: "b1", WeekNumber: 2, Days: []dto.DayTree{}},
			}},
		},
	}
}

func columnNames(cols []dto.ColumnResponse) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Name)
	}
	return out
}

func TestStore_LoadAndTreeRoundTrip(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	tree, ok := s.Tree("p1")
	require.True(t, ok)
	require.Len(t, tree.Blocks, 2)
	assert.Equal(t, "b1", tree.Blocks[0].ID, "阶段应按 order 排序")
	assert.Equal(t, "b2", tree.Blocks[1].ID)

	day := tree.Blocks[0].Weeks[0].Days[0]
	assert.Equal(t, []string{"Exercise", "Sets", "Reps"}, columnNames(day.Columns))
	require.Len(t, day.Rows, 2)
	assert.Len(t, day.Rows[0].Cells, 3)
	assert.Equal(t, "Heavy", *day.Name)

	cell, ok := s.CellAt("r1", "c1")
	require.True(t, ok)
	assert.Equal(t, "Squat", cell.Value)

	b, ok := s.Block("b1")
	require.True(t, ok)
	assert.Nil(t, b.Weeks, "实体副本不应携带嵌套子项")
}

func TestStore_LoadReplacesSubtree(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	smaller := sampleTree()
	smaller.Blocks = smaller.Blocks[:1]
	s.Load(smaller)

	_, ok := s.Block("b1")
	assert.False(t, ok)
	_, ok = s.Day("d1")
	assert.False(t, ok, "重新加载后旧子树应被清除")
	_, ok = s.Cell("x11")
	assert.False(t, ok)
	assert.Len(t, s.Programs(), 1)
}

func TestStore_MoveColumn(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())
	s.PutColumn(dto.ColumnResponse{ID: "c4", DayID: "d1", Name: "RPE", Order: 3})

	require.True(t, s.MoveColumn("c1", 2))

	cols := s.Columns("d1")
	assert.Equal(t, []string{"Sets", "Reps", "Exercise", "RPE"}, columnNames(cols))
	for i, c := range cols {
		assert.Equal(t, i, c.Order, "order 应连续")
	}

	require.True(t, s.MoveColumn("c4", 99))
	assert.Equal(t, "RPE", s.Columns("d1")[3].Name, "越界目标应夹取到末尾")

	assert.False(t, s.MoveColumn("missing", 0))
}

func TestStore_MoveRowAndBlock(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	require.True(t, s.MoveRow("r2", 0))
	rows := s.Rows("d1")
	assert.Equal(t, "r2", rows[0].ID)
	assert.Equal(t, 0, rows[0].Order)
	assert.Equal(t, 1, rows[1].Order)

	require.True(t, s.MoveBlock("b2", -5))
	blocks := s.Blocks("p1")
	assert.Equal(t, "b2", blocks[0].ID)
	assert.Equal(t, 0, blocks[0].Order)
}

func TestStore_RemoveBlockDropsDescendants(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	s.RemoveBlock("b1")

	for _, id := range []string{"w1", "w2"} {
		_, ok := s.Week(id)
		assert.False(t, ok, "周 %s 应被移除", id)
	}
	_, ok := s.Day("d1")
	assert.False(t, ok)
	_, ok = s.Column("c1")
	assert.False(t, ok)
	_, ok = s.Cell("x21")
	assert.False(t, ok)

	blocks := s.Blocks("p1")
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].Order, "剩余阶段应重排")
}

func TestStore_RemoveWeekAndDayRenumber(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	s.RemoveDay("d1")
	d2, ok := s.Day("d2")
	require.True(t, ok)
	assert.Equal(t, 1, d2.DayNumber)

	s.RemoveWeek("w1")
	w2, ok := s.Week("w2")
	require.True(t, ok)
	assert.Equal(t, 1, w2.WeekNumber)
}

func TestStore_RemoveColumnDropsCells(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	s.RemoveColumn("c1")

	_, ok := s.CellAt("r1", "c1")
	assert.False(t, ok)
	_, ok = s.Cell("x21")
	assert.False(t, ok)
	assert.Len(t, s.Rows("d1")[0].Cells, 2)
	assert.Equal(t, []string{"Sets", "Reps"}, columnNames(s.Columns("d1")))
	assert.Equal(t, 0, s.Columns("d1")[0].Order)
}

func TestStore_PutCellKeepsOnePerPosition(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	s.PutCell(dto.CellResponse{ID: "x11", RowID: "r1", ColumnID: "c1", Value: "Front Squat"})
	s.PutCell(dto.CellResponse{ID: "x22", RowID: "r2", ColumnID: "c2", Value: "3"})
	s.PutCell(dto.CellResponse{ID: "x22b", RowID: "r2", ColumnID: "c2", Value: "4"})

	c, _ := s.CellAt("r1", "c1")
	assert.Equal(t, "Front Squat", c.Value)

	c, _ = s.CellAt("r2", "c2")
	assert.Equal(t, "x22b", c.ID)
	assert.Len(t, s.Rows("d1")[1].Cells, 2)
}

func TestStore_SetProgramsDropsMissing(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	s.SetPrograms([]dto.ProgramSummary{{ID: "p2", Name: "Hypertrophy"}})

	_, ok := s.Tree("p1")
	assert.False(t, ok)
	_, ok = s.Block("b1")
	assert.False(t, ok)
	require.Len(t, s.Programs(), 1)
	assert.Equal(t, "Hypertrophy", s.Programs()[0].Name)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Load(sampleTree())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.MoveColumn("c1", i%3)
		}(i)
		go func() {
			defer wg.Done()
			s.Tree("p1")
		}()
	}
	wg.Wait()

	cols := s.Columns("d1")
	require.Len(t, cols, 3)
	for i, c := range cols {
		assert.Equal(t, i, c.Order)
	}
}
