package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"amity/internal/core"
)

const (
	allocationsSheet = "Allocations"
	unallocatedSheet = "Unallocated"
)

// AllocationsHeader is the first row of the allocations workbook.
var AllocationsHeader = []string{"Room", "Type", "Capacity", "Occupants"}

// UnallocatedHeader is the first row of the unallocated workbook.
var UnallocatedHeader = []string{"ID", "Name", "Role", "Missing"}

// AllocationsWorkbook renders one row per room.
func AllocationsWorkbook(rows []core.RoomAllocation) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, row := range rows {
		data = append(data, []any{row.Room, string(row.Type), row.Capacity, strings.Join(row.Occupants, ", ")})
	}
	return workbook(allocationsSheet, AllocationsHeader, []float64{20, 15, 10, 60}, data)
}

// UnallocatedWorkbook renders one row per person missing a room.
func UnallocatedWorkbook(rows []core.UnallocatedPerson) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, row := range rows {
		data = append(data, []any{row.ID, row.FullName, string(row.Role), joinTypes(row.Missing)})
	}
	return workbook(unallocatedSheet, UnallocatedHeader, []float64{15, 30, 12, 30}, data)
}

func writeWorkbookText(w io.Writer, r io.Reader) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if _, err := fmt.Fprintf(w, "[%s]\n", sheet); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
	}
	return nil
}

func workbook(sheet string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if col < len(widths) {
			if err := f.SetColWidth(sheet, name, name, widths[col]); err != nil {
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := values
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
