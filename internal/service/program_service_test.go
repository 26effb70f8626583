package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/config"
	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/internal/repository"
	"github.com/artisenpaiii/liftlog/internal/testutil"
	pkgredis "github.com/artisenpaiii/liftlog/pkg/redis"
)

// ── 基于内存 SQLite 的层级业务测试 ──

type treeFixture struct {
	svc   *Service
	db    *gorm.DB
	owner string
	other string
}

func setupTreeServices(t *testing.T, rdb *pkgredis.Client) *treeFixture {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	owner := &model.User{Username: "owner", Email: "owner@example.com", PasswordHash: "x"}
	other := &model.User{Username: "other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, repo.User.Create(ctx, owner))
	require.NoError(t, repo.User.Create(ctx, other))

	cfg := &config.Config{Cache: config.CacheConfig{TreeTTL: time.Minute}}
	svc := NewService(cfg, repo, nil, rdb, nil, zap.NewNop())

	return &treeFixture{svc: svc, db: db, owner: owner.ID, other: other.ID}
}

// buildDay 创建 计划 → 阶段 → 周 → 日，返回各级 ID 与训练日
func (f *treeFixture) buildDay(t *testing.T, columns ...string) (programID string, day dto.DayTree) {
	t.Helper()
	ctx := context.Background()

	p, err := f.svc.Program.Create(ctx, &dto.CreateProgramRequest{Name: "Strength"}, f.owner)
	require.NoError(t, err)
	b, err := f.svc.Block.Create(ctx, &dto.CreateBlockRequest{ProgramID: p.ID, Name: "Base"}, f.owner)
	require.NoError(t, err)
	w, err := f.svc.Week.Create(ctx, &dto.CreateWeekRequest{BlockID: b.Block.ID}, f.owner)
	require.NoError(t, err)
	d, err := f.svc.Day.Create(ctx, &dto.CreateDayRequest{WeekID: w.Week.ID, Columns: columns}, f.owner)
	require.NoError(t, err)

	return p.ID, d.Day
}

func intPtr(v int) *int { return &v }

func columnOrders(columns []dto.ColumnResponse) map[string]int {
	out := make(map[string]int, len(columns))
	for _, c := range columns {
		out[c.Name] = c.Order
	}
	return out
}

func TestProgram_PerUserIsolation(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()

	p, err := f.svc.Program.Create(ctx, &dto.CreateProgramRequest{Name: "Owner Plan"}, f.owner)
	require.NoError(t, err)

	list, err := f.svc.Program.List(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, list.Programs, "其他用户不应看到该计划")

	_, err = f.svc.Program.Get(ctx, p.ID, f.other)
	assert.True(t, errors.Is(err, ErrProgramNotFound))

	_, err = f.svc.Block.Create(ctx, &dto.CreateBlockRequest{ProgramID: p.ID, Name: "Sneaky"}, f.other)
	assert.True(t, errors.Is(err, ErrProgramNotFound))

	assert.True(t, errors.Is(f.svc.Program.Delete(ctx, p.ID, f.other), ErrProgramNotFound))

	list, err = f.svc.Program.List(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, list.Programs, 1)
	assert.Equal(t, "Owner Plan", list.Programs[0].Name)
}

func TestDay_CreateNormalizesColumns(t *testing.T) {
	f := setupTreeServices(t, nil)

	_, day := f.buildDay(t, "Exercise", " ", "Reps", "Exercise", "RPE")

	require.Len(t, day.Columns, 3)
	assert.Equal(t, map[string]int{"Exercise": 0, "Reps": 1, "RPE": 2}, columnOrders(day.Columns))
	assert.Equal(t, 1, day.DayNumber)
}

func TestDay_UpdateRendersNotes(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "Exercise")

	name, notes := "Heavy", "**Top set** @ RPE 8"
	resp, err := f.svc.Day.Update(ctx, &dto.UpdateDayRequest{DayID: day.ID, Name: &name, Notes: &notes}, f.owner)
	require.NoError(t, err)
	require.NotNil(t, resp.Day.Name)
	assert.Equal(t, "Heavy", *resp.Day.Name)
	assert.Contains(t, resp.Day.NotesHTML, "<strong>Top set</strong>")

	empty := ""
	resp, err = f.svc.Day.Update(ctx, &dto.UpdateDayRequest{DayID: day.ID, Name: &empty}, f.owner)
	require.NoError(t, err)
	assert.Nil(t, resp.Day.Name, "空名称应清空")
	require.NotNil(t, resp.Day.Notes, "未提供的字段应保持不变")
}

func TestBlock_DeleteLeavesNoOrphansAndResequences(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	programID, day := f.buildDay(t, "Exercise", "Reps")

	_, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)
	second, err := f.svc.Block.Create(ctx, &dto.CreateBlockRequest{ProgramID: programID, Name: "Peak"}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Block.Order)

	tree, err := f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	require.NoError(t, f.svc.Block.Delete(ctx, tree.Program.Blocks[0].ID, f.owner))

	for _, m := range []interface{}{&model.Week{}, &model.Day{}, &model.DayColumn{}, &model.DayRow{}, &model.DayCell{}} {
		var n int64
		require.NoError(t, f.db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T 不应残留", m)
	}

	tree, err = f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	require.Len(t, tree.Program.Blocks, 1)
	assert.Equal(t, 0, tree.Program.Blocks[0].Order, "剩余阶段应重排为从 0 开始")
}

func TestWeekAndDay_DeleteRenumbers(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	programID, day := f.buildDay(t)

	tree, err := f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	blockID := tree.Program.Blocks[0].ID

	w2, err := f.svc.Week.Create(ctx, &dto.CreateWeekRequest{BlockID: blockID}, f.owner)
	require.NoError(t, err)
	w3, err := f.svc.Week.Create(ctx, &dto.CreateWeekRequest{BlockID: blockID}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 3, w3.Week.WeekNumber)

	require.NoError(t, f.svc.Week.Delete(ctx, w2.Week.ID, f.owner))

	d2, err := f.svc.Day.Create(ctx, &dto.CreateDayRequest{WeekID: day.WeekID}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 2, d2.Day.DayNumber)
	require.NoError(t, f.svc.Day.Delete(ctx, day.ID, f.owner))

	tree, err = f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	weeks := tree.Program.Blocks[0].Weeks
	require.Len(t, weeks, 2)
	assert.Equal(t, 1, weeks[0].WeekNumber)
	assert.Equal(t, 2, weeks[1].WeekNumber)
	require.Len(t, weeks[0].Days, 1)
	assert.Equal(t, 1, weeks[0].Days[0].DayNumber)
}

func TestColumn_ReorderFirstToThird(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "A", "B", "C", "D")

	resp, err := f.svc.Table.ReorderColumn(ctx, &dto.ReorderColumnRequest{
		ColumnID: day.Columns[0].ID,
		Order:    intPtr(2),
	}, f.owner)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"B": 0, "C": 1, "A": 2, "D": 3}, columnOrders(resp.Columns))
	for i, c := range resp.Columns {
		assert.Equal(t, i, c.Order, "返回列表应按新顺序排列")
	}
}

func TestColumn_ReorderClampsTarget(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "A", "B", "C")

	resp, err := f.svc.Table.ReorderColumn(ctx, &dto.ReorderColumnRequest{
		ColumnID: day.Columns[0].ID,
		Order:    intPtr(10),
	}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"B": 0, "C": 1, "A": 2}, columnOrders(resp.Columns))
}

func TestRow_AddCreatesEmptyCellsAndDeleteResequences(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "Exercise", "Reps")

	r1, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)
	require.Len(t, r1.Row.Cells, 2)
	for _, c := range r1.Row.Cells {
		assert.Empty(t, c.Value)
	}

	r2, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, r2.Row.Order)

	moved, err := f.svc.Table.ReorderRow(ctx, &dto.ReorderRowRequest{RowID: r2.Row.ID, Order: intPtr(0)}, f.owner)
	require.NoError(t, err)
	require.Len(t, moved.Rows, 2)
	assert.Equal(t, r2.Row.ID, moved.Rows[0].ID)

	require.NoError(t, f.svc.Table.DeleteRow(ctx, r2.Row.ID, f.owner))

	var row model.DayRow
	require.NoError(t, f.db.Where("id = ?", r1.Row.ID).First(&row).Error)
	assert.Equal(t, 0, row.SortOrder)
}

func TestCell_UpsertTwiceYieldsOneCell(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "Exercise")

	col2, err := f.svc.Table.AddColumn(ctx, &dto.CreateColumnRequest{DayID: day.ID, Name: "Reps"}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, col2.Column.Order)

	row, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)

	req := &dto.UpsertCellRequest{RowID: row.Row.ID, ColumnID: day.Columns[0].ID, Value: "Squat"}
	first, err := f.svc.Table.UpsertCell(ctx, req, f.owner)
	require.NoError(t, err)
	req.Value = "Front Squat"
	second, err := f.svc.Table.UpsertCell(ctx, req, f.owner)
	require.NoError(t, err)

	assert.Equal(t, first.Cell.ID, second.Cell.ID)
	assert.Equal(t, "Front Squat", second.Cell.Value)

	var n int64
	require.NoError(t, f.db.Model(&model.DayCell{}).
		Where("row_id = ? AND column_id = ?", row.Row.ID, day.Columns[0].ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	updated, err := f.svc.Table.UpdateCell(ctx, &dto.UpdateCellRequest{CellID: first.Cell.ID, Value: "Pause Squat"}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, "Pause Squat", updated.Cell.Value)

	_, err = f.svc.Table.UpdateCell(ctx, &dto.UpdateCellRequest{CellID: first.Cell.ID, Value: "x"}, f.other)
	assert.True(t, errors.Is(err, ErrCellNotFound), "其他用户的单元格应视为不存在")
}

func TestCell_UpsertRejectsColumnFromAnotherDay(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "Exercise")
	_, otherDay := f.buildDay(t, "Exercise")

	row, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)

	_, err = f.svc.Table.UpsertCell(ctx, &dto.UpsertCellRequest{
		RowID:    row.Row.ID,
		ColumnID: otherDay.Columns[0].ID,
		Value:    "Squat",
	}, f.owner)
	assert.True(t, errors.Is(err, ErrColumnMismatch))
}

func TestColumn_DeleteRemovesCellsAndResequences(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	_, day := f.buildDay(t, "A", "B", "C")

	_, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)
	require.NoError(t, f.svc.Table.DeleteColumn(ctx, day.Columns[0].ID, f.owner))

	var cells int64
	require.NoError(t, f.db.Model(&model.DayCell{}).Count(&cells).Error)
	assert.Equal(t, int64(2), cells)

	var columns []model.DayColumn
	require.NoError(t, f.db.Order("sort_order").Find(&columns).Error)
	require.Len(t, columns, 2)
	assert.Equal(t, "B", columns[0].Name)
	assert.Equal(t, 0, columns[0].SortOrder)
	assert.Equal(t, 1, columns[1].SortOrder)
}

func TestTreeCache_InvalidatedOnMutation(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	f := setupTreeServices(t, rdb)
	ctx := context.Background()
	programID, day := f.buildDay(t, "Exercise")

	_, err := f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	assert.True(t, mr.Exists(treeKey(programID)), "读取后应写入缓存")

	_, err = f.svc.Table.AddColumn(ctx, &dto.CreateColumnRequest{DayID: day.ID, Name: "Reps"}, f.owner)
	require.NoError(t, err)
	assert.False(t, mr.Exists(treeKey(programID)), "变更后应清除缓存")

	tree, err := f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	assert.Len(t, tree.Program.Blocks[0].Weeks[0].Days[0].Columns, 2)
}

func TestTreeCache_StaleWriteAfterInvalidateIsIgnored(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	cache := &treeCache{store: rdb, ttl: time.Minute, logger: zap.NewNop()}
	ctx := context.Background()

	// 读请求未命中，记下版本后去查库
	_, version, ok := cache.get(ctx, "p1")
	require.False(t, ok)

	// 查库期间另一请求提交变更并清除缓存
	cache.invalidate(ctx, "p1")

	// 读请求随后回写旧树
	cache.set(ctx, &dto.ProgramTree{ProgramSummary: dto.ProgramSummary{ID: "p1", Name: "Old"}}, version)

	_, current, ok := cache.get(ctx, "p1")
	assert.False(t, ok, "变更前读到的旧树不应命中")
	assert.Equal(t, version+1, current)

	cache.set(ctx, &dto.ProgramTree{ProgramSummary: dto.ProgramSummary{ID: "p1", Name: "New"}}, current)
	tree, _, ok := cache.get(ctx, "p1")
	require.True(t, ok)
	assert.Equal(t, "New", tree.Name)
}

func TestBlock_RenameAndReorder(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	programID, _ := f.buildDay(t)

	b2, err := f.svc.Block.Create(ctx, &dto.CreateBlockRequest{ProgramID: programID, Name: "Peak"}, f.owner)
	require.NoError(t, err)

	renamed, err := f.svc.Block.Rename(ctx, b2.Block.ID, &dto.RenameBlockRequest{Name: "Peaking"}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, "Peaking", renamed.Block.Name)

	list, err := f.svc.Block.Reorder(ctx, &dto.ReorderBlockRequest{BlockID: b2.Block.ID, Order: intPtr(0)}, f.owner)
	require.NoError(t, err)
	require.Len(t, list.Blocks, 2)
	assert.Equal(t, "Peaking", list.Blocks[0].Name)
	assert.Equal(t, 0, list.Blocks[0].Order)
	assert.Equal(t, 1, list.Blocks[1].Order)
	assert.Len(t, list.Blocks[1].Weeks, 1, "重排结果应包含完整子树")
}

// ── 导出 ──

func TestAuthorize_MalformedIDSkipsLookup(t *testing.T) {
	resolve := func(context.Context, string) (*repository.Ownership, error) {
		t.Fatal("非法 id 不应查询数据库")
		return nil, nil
	}

	for _, id := range []string{"abc", "", "1; DROP TABLE blocks"} {
		_, err := authorize(context.Background(), zap.NewNop(), resolve, id, "user-1", ErrBlockNotFound)
		assert.True(t, errors.Is(err, ErrBlockNotFound), "id=%q 期望 ErrBlockNotFound，实际: %v", id, err)
	}
}

func TestExport_XLSX(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	programID, day := f.buildDay(t, "Exercise", "Reps")

	row, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: day.ID}, f.owner)
	require.NoError(t, err)
	_, err = f.svc.Table.UpsertCell(ctx, &dto.UpsertCellRequest{RowID: row.Row.ID, ColumnID: day.Columns[0].ID, Value: "Squat"}, f.owner)
	require.NoError(t, err)

	buf, filename, err := f.svc.Export.ExportXLSX(ctx, programID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, "Strength.xlsx", filename)

	xf, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer xf.Close()

	sheets := xf.GetSheetList()
	require.Equal(t, []string{"Base - Week 1"}, sheets)

	rows, err := xf.GetRows(sheets[0])
	require.NoError(t, err)
	flat := make([]string, 0)
	for _, r := range rows {
		flat = append(flat, strings.Join(r, "|"))
	}
	joined := strings.Join(flat, "\n")
	assert.Contains(t, joined, "Day 1")
	assert.Contains(t, joined, "Exercise|Reps")
	assert.Contains(t, joined, "Squat")
}

func TestExport_XLSX_SheetNamesCaseInsensitiveAndQuoted(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()

	p, err := f.svc.Program.Create(ctx, &dto.CreateProgramRequest{Name: "Peaking"}, f.owner)
	require.NoError(t, err)

	for _, tc := range []struct{ block, value string }{
		{"Heavy", "Squat"},
		{"heavy", "Bench"},
		{"'Peak", "Deadlift"},
	} {
		b, err := f.svc.Block.Create(ctx, &dto.CreateBlockRequest{ProgramID: p.ID, Name: tc.block}, f.owner)
		require.NoError(t, err)
		w, err := f.svc.Week.Create(ctx, &dto.CreateWeekRequest{BlockID: b.Block.ID}, f.owner)
		require.NoError(t, err)
		d, err := f.svc.Day.Create(ctx, &dto.CreateDayRequest{WeekID: w.Week.ID, Columns: []string{"Exercise"}}, f.owner)
		require.NoError(t, err)
		row, err := f.svc.Table.AddRow(ctx, &dto.CreateRowRequest{DayID: d.Day.ID}, f.owner)
		require.NoError(t, err)
		_, err = f.svc.Table.UpsertCell(ctx, &dto.UpsertCellRequest{RowID: row.Row.ID, ColumnID: d.Day.Columns[0].ID, Value: tc.value}, f.owner)
		require.NoError(t, err)
	}

	buf, _, err := f.svc.Export.ExportXLSX(ctx, p.ID, f.owner)
	require.NoError(t, err, "首尾单引号的 Block 名不应导致导出失败")

	xf, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer xf.Close()

	sheets := xf.GetSheetList()
	require.Equal(t, []string{"Heavy - Week 1", "heavy - Week 1 (2)", "Peak - Week 1"}, sheets,
		"仅大小写不同的 Block 应各自生成 Sheet")

	for i, want := range []string{"Squat", "Bench", "Deadlift"} {
		rows, err := xf.GetRows(sheets[i])
		require.NoError(t, err)
		var joined strings.Builder
		for _, r := range rows {
			joined.WriteString(strings.Join(r, "|"))
			joined.WriteString("\n")
		}
		assert.Contains(t, joined.String(), want)
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{"sheet1": true}

	assert.Equal(t, "sheet1 (2)", uniqueSheetName("sheet1", used))
	assert.Equal(t, "Peak", uniqueSheetName("'Peak'", used))
	assert.Equal(t, "PEAK (2)", uniqueSheetName("PEAK", used))
	assert.Equal(t, "Sheet", uniqueSheetName("''", used))
	assert.Equal(t, "a-b", uniqueSheetName("a/b", used))
}

func TestExport_ICS(t *testing.T) {
	f := setupTreeServices(t, nil)
	ctx := context.Background()
	programID, day := f.buildDay(t)

	// 第二周第一天应在 start + 7 天
	tree, err := f.svc.Program.Get(ctx, programID, f.owner)
	require.NoError(t, err)
	w2, err := f.svc.Week.Create(ctx, &dto.CreateWeekRequest{BlockID: tree.Program.Blocks[0].ID}, f.owner)
	require.NoError(t, err)
	_, err = f.svc.Day.Create(ctx, &dto.CreateDayRequest{WeekID: w2.Week.ID}, f.owner)
	require.NoError(t, err)

	data, filename, err := f.svc.Export.ExportICS(ctx, programID, f.owner, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, "Strength.ics", filename)

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	starts := map[string]string{}
	for _, e := range events {
		starts[e.Id()] = e.GetProperty(ics.ComponentPropertyDtStart).Value
	}
	assert.Equal(t, "20260105", starts[day.ID+"@liftlog"])

	_, _, err = f.svc.Export.ExportICS(ctx, programID, f.owner, "05/01/2026")
	assert.True(t, errors.Is(err, ErrInvalidExportStart))
}
