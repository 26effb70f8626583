package service

import (
	"time"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/pkg/markdown"
)

// ── model → dto 转换 ──

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toProgramSummary(p *model.Program) dto.ProgramSummary {
	return dto.ProgramSummary{
		ID:        p.ID,
		Name:      p.Name,
		CreatedBy: p.CreatedBy,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func toProgramTree(p *model.Program) *dto.ProgramTree {
	tree := &dto.ProgramTree{
		ProgramSummary: toProgramSummary(p),
		Blocks:         make([]dto.BlockTree, 0, len(p.Blocks)),
	}
	for i := range p.Blocks {
		tree.Blocks = append(tree.Blocks, toBlockTree(&p.Blocks[i]))
	}
	return tree
}

func toBlockTree(b *model.Block) dto.BlockTree {
	out := dto.BlockTree{
		ID:        b.ID,
		ProgramID: b.ProgramID,
		Name:      b.Name,
		Order:     b.SortOrder,
		Weeks:     make([]dto.WeekTree, 0, len(b.Weeks)),
	}
	for i := range b.Weeks {
		out.Weeks = append(out.Weeks, toWeekTree(&b.Weeks[i]))
	}
	return out
}

func toWeekTree(w *model.Week) dto.WeekTree {
	out := dto.WeekTree{
		ID:         w.ID,
		BlockID:    w.BlockID,
		WeekNumber: w.WeekNumber,
		Days:       make([]dto.DayTree, 0, len(w.Days)),
	}
	for i := range w.Days {
		out.Days = append(out.Days, toDayTree(&w.Days[i]))
	}
	return out
}

func toDayTree(d *model.Day) dto.DayTree {
	out := dto.DayTree{
		ID:        d.ID,
		WeekID:    d.WeekID,
		DayNumber: d.DayNumber,
		Name:      d.Name,
		Notes:     d.Notes,
		Columns:   toColumnResponses(d.Columns),
		Rows:      make([]dto.RowResponse, 0, len(d.Rows)),
	}
	if d.Notes != nil {
		if html, err := markdown.Render(*d.Notes); err == nil {
			out.NotesHTML = html
		}
	}
	for i := range d.Rows {
		out.Rows = append(out.Rows, toRowResponse(&d.Rows[i]))
	}
	return out
}

func toColumnResponse(c *model.DayColumn) dto.ColumnResponse {
	return dto.ColumnResponse{
		ID:    c.ID,
		DayID: c.DayID,
		Name:  c.Name,
		Order: c.SortOrder,
	}
}

func toColumnResponses(columns []model.DayColumn) []dto.ColumnResponse {
	out := make([]dto.ColumnResponse, 0, len(columns))
	for i := range columns {
		out = append(out, toColumnResponse(&columns[i]))
	}
	return out
}

func toRowResponse(r *model.DayRow) dto.RowResponse {
	out := dto.RowResponse{
		ID:    r.ID,
		DayID: r.DayID,
		Order: r.SortOrder,
		Cells: make([]dto.CellResponse, 0, len(r.Cells)),
	}
	for i := range r.Cells {
		out.Cells = append(out.Cells, toCellResponse(&r.Cells[i]))
	}
	return out
}

func toRowResponses(rows []model.DayRow) []dto.RowResponse {
	out := make([]dto.RowResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toRowResponse(&rows[i]))
	}
	return out
}

func toCellResponse(c *model.DayCell) dto.CellResponse {
	return dto.CellResponse{
		ID:       c.ID,
		RowID:    c.RowID,
		ColumnID: c.ColumnID,
		Value:    c.Value,
	}
}
