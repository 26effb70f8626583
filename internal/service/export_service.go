package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/repository"
	pkgerrors "github.com/artisenpaiii/liftlog/pkg/errors"
)

// ErrExportGenerateFail 生成导出文件失败
var ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, 50000, "internal", "Failed to generate export")

// ExportService 训练计划导出业务接口
//
// 导出以内存缓冲返回，由 Handler 层设置 Content-Type / Content-Disposition 后写入响应
type ExportService interface {
	// ExportXLSX 导出为 Excel：每个"阶段 - 第 N 周"一个 Sheet，每个训练日一张表
	ExportXLSX(ctx context.Context, id, userID string) (*bytes.Buffer, string, error)
	// ExportICS 导出为日历：每个训练日一个全天事件，start 为第一周第一天（YYYY-MM-DD）
	ExportICS(ctx context.Context, id, userID, start string) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	trees  *treeLoader
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, trees *treeLoader, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, trees: trees, logger: logger}
}

func (s *exportService) loadTree(ctx context.Context, id, userID string) (*dto.ProgramTree, error) {
	if _, err := authorize(ctx, s.logger, s.repo.Access.Program, id, userID, ErrProgramNotFound); err != nil {
		return nil, err
	}
	return s.trees.load(ctx, id)
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "<阶段名> - Week N"
//   - 每个训练日：标题行 "Day N: 名称"，表头为列名，其后每行对应表格行
//   - 训练日之间空一行

func (s *exportService) ExportXLSX(ctx context.Context, id, userID string) (*bytes.Buffer, string, error) {
	tree, err := s.loadTree(ctx, id, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Excel Sheet 名不区分大小写；默认的 Sheet1 最后会被删除，不可复用
	used := map[string]bool{"sheet1": true}
	sheets := 0
	for _, block := range tree.Blocks {
		for _, week := range block.Weeks {
			sheet := uniqueSheetName(fmt.Sprintf("%s - Week %d", block.Name, week.WeekNumber), used)
			if _, err := f.NewSheet(sheet); err != nil {
				s.logger.Error("创建 Sheet 失败", zap.String("sheet", sheet), zap.Error(err))
				return nil, "", ErrExportGenerateFail.Wrap(err)
			}
			writeWeekSheet(f, sheet, block.Name, week, titleStyle, headerStyle)
			sheets++
		}
	}

	// 计划为空时保留一个带标题的 Sheet
	if sheets == 0 {
		sheet := uniqueSheetName(tree.Name, used)
		f.NewSheet(sheet)
		f.SetCellValue(sheet, "A1", tree.Name)
		f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}

	return buf, exportFilename(tree.Name, "xlsx"), nil
}

func writeWeekSheet(f *excelize.File, sheet, blockName string, week dto.WeekTree, titleStyle, headerStyle int) {
	row := 1
	f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("%s - Week %d", blockName, week.WeekNumber))
	f.SetCellStyle(sheet, cell("A", row), cell("A", row), titleStyle)
	row += 2

	for _, day := range week.Days {
		f.SetCellValue(sheet, cell("A", row), dayTitle(day))
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), titleStyle)
		row++

		if len(day.Columns) > 0 {
			for i, col := range day.Columns {
				f.SetCellValue(sheet, cell(colName(i), row), col.Name)
				f.SetColWidth(sheet, colName(i), colName(i), 18)
			}
			f.SetCellStyle(sheet, cell("A", row), cell(colName(len(day.Columns)-1), row), headerStyle)
			row++
		}

		for _, r := range day.Rows {
			values := make(map[string]string, len(r.Cells))
			for _, c := range r.Cells {
				values[c.ColumnID] = c.Value
			}
			for i, col := range day.Columns {
				f.SetCellValue(sheet, cell(colName(i), row), values[col.ID])
			}
			row++
		}

		if day.Notes != nil {
			f.SetCellValue(sheet, cell("A", row), *day.Notes)
			row++
		}
		row++
	}
}

// ═══════════════════════════════════════════════════════════
// ExportICS
// ═══════════════════════════════════════════════════════════
//
// 训练日日期 = start + (全局周序 × 7 + dayNumber - 1) 天，全局周序按阶段顺序累计

func (s *exportService) ExportICS(ctx context.Context, id, userID, start string) ([]byte, string, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, "", ErrInvalidExportStart
	}

	tree, err := s.loadTree(ctx, id, userID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//LiftLog//Program Calendar//EN")
	cal.SetXWRCalName(tree.Name)

	stamp := time.Now().UTC()
	weekIndex := 0
	for _, block := range tree.Blocks {
		for _, week := range block.Weeks {
			for _, day := range week.Days {
				date := startDate.AddDate(0, 0, weekIndex*7+day.DayNumber-1)

				event := cal.AddEvent(day.ID + "@liftlog")
				event.SetDtStampTime(stamp)
				event.SetAllDayStartAt(date)
				event.SetAllDayEndAt(date.AddDate(0, 0, 1))
				event.SetSummary(dayTitle(day))

				desc := fmt.Sprintf("%s - Week %d", block.Name, week.WeekNumber)
				if day.Notes != nil {
					desc += "\n\n" + *day.Notes
				}
				event.SetDescription(desc)
			}
			weekIndex++
		}
	}

	return []byte(cal.Serialize()), exportFilename(tree.Name, "ics"), nil
}

// ── 辅助函数 ──

func dayTitle(day dto.DayTree) string {
	if day.Name != nil && *day.Name != "" {
		return fmt.Sprintf("Day %d: %s", day.DayNumber, *day.Name)
	}
	return fmt.Sprintf("Day %d", day.DayNumber)
}

// uniqueSheetName 去除 Excel 不允许的字符及首尾单引号并截断至 31 字符，
// 重名（不区分大小写）时追加序号
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, name)
	clean = trimSheetName(clean)
	if clean == "" {
		clean = "Sheet"
	}

	candidate := trimSheetName(truncateRunes(clean, 31))
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = trimSheetName(truncateRunes(clean, 31-len(suffix))) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func trimSheetName(s string) string {
	return strings.Trim(strings.TrimSpace(s), "' ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func exportFilename(programName, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, programName)
	if base == "" {
		base = "program"
	}
	return base + "." + ext
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
