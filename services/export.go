package services

import (
	"bytes"
	"fmt"

	"bygg_flow_app_go/models"

	"github.com/xuri/excelize/v2"
)

// ExportLineItemsExcel writes the document's line items to an xlsx workbook,
// one sheet per enabled section that carries items. Used by associations to
// compare quotes side by side.
func ExportLineItemsExcel(doc *models.Document) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})

	sheetCount := 0
	for _, section := range doc.Sections {
		if !section.Enabled || len(section.Items) == 0 {
			continue
		}

		sheet := sheetName(section.Title, sheetCount)
		if sheetCount == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
			}
		}
		sheetCount++

		f.SetCellValue(sheet, "A1", doc.Title)
		f.SetCellStyle(sheet, "A1", "A1", headerStyle)
		f.SetCellValue(sheet, "A2", doc.RefID)

		headers := []string{"Beskrivning", "Detaljer", "Antal", "À-pris", "Summa"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 4)
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}

		row := 5
		total := 0.0
		for _, item := range section.Items {
			details := item.Description
			if item.Value != "" {
				if details != "" {
					details += " | "
				}
				details += item.Value
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Label)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), details)
			if item.Quantity != 0 {
				f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Quantity)
			}
			if item.UnitPrice != 0 {
				f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.UnitPrice)
			}
			if item.Total != 0 {
				f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Total)
			}
			total += item.Total
			row++
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "Summa")
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row+1), total)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row+1), fmt.Sprintf("A%d", row+1), headerStyle)

		f.SetColWidth(sheet, "A", "A", 40)
		f.SetColWidth(sheet, "B", "B", 40)
		f.SetColWidth(sheet, "C", "E", 14)
	}

	if sheetCount == 0 {
		return nil, fmt.Errorf("document %s has no line items to export", doc.ID)
	}

	return f.WriteToBuffer()
}

// sheetName keeps sheet titles within Excel's 31-character limit and unique.
func sheetName(title string, index int) string {
	if title == "" {
		title = fmt.Sprintf("Avsnitt %d", index+1)
	}
	runes := []rune(title)
	if len(runes) > 28 {
		runes = runes[:28]
	}
	if index > 0 {
		return fmt.Sprintf("%s %d", string(runes), index+1)
	}
	return string(runes)
}
