package services

import (
	"testing"

	"bygg_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func exportTestDocument() *models.Document {
	return &models.Document{
		ID:    "doc-1",
		RefID: "DOC-2601114Z2K-7",
		Title: "Offert – Takbyte",
		Sections: []models.Section{
			{
				ID:      "price",
				Title:   "Prisuppställning",
				Enabled: true,
				Items: []models.LineItem{
					{ID: "i1", Label: "Takpannor", Description: "Benders Palema", Quantity: 120, UnitPrice: 45, Total: 5400},
					{ID: "i2", Label: "Arbete", Quantity: 40, UnitPrice: 650, Total: 26000},
				},
			},
			{
				ID:      "disabled",
				Title:   "Avstängd",
				Enabled: false,
				Items:   []models.LineItem{{ID: "x", Label: "Ska inte med", Total: 1}},
			},
		},
	}
}

func TestExportLineItemsExcel(t *testing.T) {
	buf, err := ExportLineItemsExcel(exportTestDocument())
	assert.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{"Prisuppställning"}, sheets)

	title, err := f.GetCellValue("Prisuppställning", "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Offert – Takbyte", title)

	header, err := f.GetCellValue("Prisuppställning", "A4")
	assert.NoError(t, err)
	assert.Equal(t, "Beskrivning", header)

	first, err := f.GetCellValue("Prisuppställning", "A5")
	assert.NoError(t, err)
	assert.Equal(t, "Takpannor", first)

	total, err := f.GetCellValue("Prisuppställning", "E8")
	assert.NoError(t, err)
	assert.Equal(t, "31400", total)
}

func TestExportLineItemsExcelNoItems(t *testing.T) {
	doc := &models.Document{
		ID: "doc-empty",
		Sections: []models.Section{
			{ID: "scope", Title: "Omfattning", Enabled: true},
		},
	}
	_, err := ExportLineItemsExcel(doc)
	assert.Error(t, err)
}

func TestExportLineItemsExcelMultipleSections(t *testing.T) {
	doc := exportTestDocument()
	doc.Sections = append(doc.Sections, models.Section{
		ID:      "payment-plan",
		Title:   "Betalningsplan",
		Enabled: true,
		Items:   []models.LineItem{{ID: "p1", Label: "Vid avtal", Total: 10000}},
	})

	buf, err := ExportLineItemsExcel(doc)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Len(t, sheets, 2)
	assert.Contains(t, sheets, "Prisuppställning")
}
