package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/crisis-service/internal/domain"
)

// SheetName is the worksheet holding exported crises.
const SheetName = "Crises"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header is the first row of the export.
var Header = []string{
	"Id",
	"Title",
	"Description",
	"Severity",
	"Status",
	"Date Reported",
	"Date Resolved",
	"Resolution",
	"Reported By",
	"Assigned To",
	"Tags",
	"Affected Systems",
}

var columnWidths = []float64{8, 30, 50, 12, 14, 22, 22, 40, 20, 20, 30, 30}

// CrisesWorkbook renders crises as an xlsx workbook, one row per crisis.
func CrisesWorkbook(crises []domain.Crisis) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#F4CCCC"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, 1, toAny(Header)); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}
	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i := range crises {
		if err := writeRow(f, i+2, crisisRow(&crises[i])); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func crisisRow(c *domain.Crisis) []any {
	return []any{
		c.ID,
		c.Title,
		c.Description,
		c.Severity,
		c.Status,
		formatTime(&c.DateReported),
		formatTime(c.DateResolved),
		deref(c.Resolution),
		deref(c.ReportedBy),
		deref(c.AssignedTo),
		strings.Join(c.Tags, ", "),
		strings.Join(c.AffectedSystems, ", "),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
