package render

import (
	"fmt"

	"docuai/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet    = "Document"
	sectionSheet = "Sections"
)

// XLSXRenderer writes a workbook: the table (or key/value fields) on the
// first sheet and the narrative sections on a second one. Spreadsheets are
// never themed, so the design argument is ignored.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) Render(content map[string]any, templateType models.TemplateType, _ *models.DesignTokens) ([]byte, error) {
	c := ParseContent(content)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	w := &sheetWriter{f: f, sheet: dataSheet}
	w.row(titleStyle, c.Title)
	w.row(0, typeLabel(templateType))
	if c.Summary != "" {
		w.row(0, c.Summary)
	}
	w.skip()

	for _, fl := range c.Fields {
		w.row(0, fl.Label, fl.Value)
		if w.err == nil {
			w.style(bold, 1, 1)
		}
	}
	if len(c.Fields) > 0 {
		w.skip()
	}

	if c.Table != nil {
		w.row(bold, c.Table.Columns...)
		for _, row := range c.Table.Rows {
			w.row(0, row...)
		}
		if w.err == nil {
			last, _ := excelize.ColumnNumberToName(max(len(c.Table.Columns), 1))
			w.err = f.SetColWidth(dataSheet, "A", last, 22)
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("failed to write sheet %s: %w", dataSheet, w.err)
	}

	if len(c.Sections) > 0 {
		if _, err := f.NewSheet(sectionSheet); err != nil {
			return nil, fmt.Errorf("failed to add sheet: %w", err)
		}
		sw := &sheetWriter{f: f, sheet: sectionSheet}
		sw.row(bold, "Heading", "Body")
		for _, sec := range c.Sections {
			body := sec.Body
			for _, b := range sec.Bullets {
				if body != "" {
					body += "\n"
				}
				body += "- " + b
			}
			sw.row(0, sec.Heading, body)
		}
		if sw.err == nil {
			sw.err = f.SetColWidth(sectionSheet, "A", "A", 30)
		}
		if sw.err == nil {
			sw.err = f.SetColWidth(sectionSheet, "B", "B", 90)
		}
		if sw.err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", sectionSheet, sw.err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func (w *sheetWriter) row(styleID int, values ...string) {
	if w.err != nil {
		return
	}
	w.next++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.next)
		if err != nil {
			w.err = err
			return
		}
		if w.err = w.f.SetCellValue(w.sheet, cell, v); w.err != nil {
			return
		}
	}
	if styleID != 0 && len(values) > 0 {
		w.style(styleID, 1, len(values))
	}
}

func (w *sheetWriter) style(styleID, fromCol, toCol int) {
	from, err := excelize.CoordinatesToCellName(fromCol, w.next)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, w.next)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, styleID)
}

func (w *sheetWriter) skip() {
	w.next++
}
