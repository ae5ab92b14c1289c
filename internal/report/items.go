// Package report renders item listings into xlsx workbooks.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"prodtrack/internal/models"
)

const itemsSheet = "Items"

var itemHeaders = []string{
	"Item Number", "Name", "Customer", "Department", "Status",
	"Target Output", "Current Output", "Progress %", "Deadline", "Processes",
}

// ItemsWorkbook writes one row per item. Items are expected to carry their
// department and processes.
func ItemsWorkbook(items []models.Item, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range itemHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(itemsSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(itemHeaders), 1)
	f.SetCellStyle(itemsSheet, "A1", last, headerStyle)

	for r, item := range items {
		row := r + 2
		dept := ""
		if item.Department != nil {
			dept = item.Department.Name
		}
		values := []interface{}{
			item.ItemNumber,
			item.Name,
			item.Customer,
			dept,
			string(item.Status),
			item.TargetOutput,
			item.CurrentOutput,
			item.OutputProgress(),
			item.Deadline.Format("2006-01-02"),
			fmt.Sprintf("%d/%d", item.CompletedProcesses(), len(item.Processes)),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			f.SetCellValue(itemsSheet, cell, v)
		}
	}

	f.SetColWidth(itemsSheet, "A", "A", 16)
	f.SetColWidth(itemsSheet, "B", "D", 24)
	f.SetColWidth(itemsSheet, "E", "J", 14)
	if err := f.SetPanes(itemsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, err
	}
	f.SetDocProps(&excelize.DocProperties{
		Title:   "Production items",
		Created: generated.UTC().Format(time.RFC3339),
	})
	return f, nil
}

// FileName is the download name for an export taken at t.
func FileName(t time.Time) string {
	return "items_" + t.Format("20060102_150405") + ".xlsx"
}
