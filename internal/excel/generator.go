package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/academy-automation/internal/model"
)

const registerSheet = "Certificates"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateRegister writes the certificate register for a period to xlsx.
func (g *Generator) GenerateRegister(from, to time.Time, rows []model.CertificateRow) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, err
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(registerSheet, cell, value)
	}

	set("A1", "Certificate register")
	set("A2", "Period")
	set("B2", fmt.Sprintf("%s - %s", formatDate(from), formatDate(to)))
	set("A3", "Certificates issued")
	set("B3", len(rows))

	headerRow := 5
	headers := []string{"Issued", "Student", "Department", "Type", "Title", "Issuer", "Issuer role", "Verified", "Certificate ID"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
		_ = file.SetCellStyle(registerSheet, fmt.Sprintf("A%d", headerRow), last, style)
		_ = file.SetCellStyle(registerSheet, "A1", "A1", style)
	}

	for i, row := range rows {
		r := headerRow + 1 + i
		values := []interface{}{
			formatDate(row.IssuedDate),
			row.StudentName,
			row.Department,
			string(row.Type),
			row.Title,
			row.IssuerName,
			row.IssuerRole,
			verifiedLabel(row.Verified),
			row.ID.String(),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return nil, err
			}
			set(cell, value)
		}
	}

	_ = file.SetColWidth(registerSheet, "A", "A", 12)
	_ = file.SetColWidth(registerSheet, "B", "G", 24)
	_ = file.SetColWidth(registerSheet, "I", "I", 38)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func verifiedLabel(verified bool) string {
	if verified {
		return "Yes"
	}
	return "No"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
