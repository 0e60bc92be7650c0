package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/academy-automation/internal/model"
)

const defaultAcademyName = "Academy of Automotive Repair"

type Generator struct {
	fontName    string
	academyName string
}

func NewGenerator(academyName string) *Generator {
	if strings.TrimSpace(academyName) == "" {
		academyName = defaultAcademyName
	}
	return &Generator{fontName: "Helvetica", academyName: academyName}
}

// GenerateCertificate renders a single-page landscape certificate.
func (g *Generator) GenerateCertificate(ctx context.Context, req model.CertificateRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := model.ParseCertificateType(string(req.CertificateType)); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidCertificateRequest, err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle(req.CertificateType.Title(), true)
	pdf.SetAuthor(g.academyName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetDrawColor(30, 60, 110)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(strings.ToUpper(g.academyName)), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont(g.fontName, "B", 30)
	pdf.CellFormat(0, 14, tr(req.CertificateType.Title()), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "", 13)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 24)
	pdf.CellFormat(0, 12, tr(studentName(req)), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "", 13)
	for _, line := range bodyLines(req) {
		pdf.MultiCell(0, 7, tr(line), "", "C", false)
	}

	if skills := req.Student.Skills(); len(skills) > 0 {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "I", 11)
		pdf.MultiCell(0, 6, tr("Skills: "+strings.Join(skills, ", ")), "", "C", false)
	}

	pdf.SetY(160)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(128, 6, "Date of issue: "+formatDate(req.IssueDate), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "______________________________", "", 1, "R", false, 0, "")
	pdf.CellFormat(128, 6, "Certificate ID: "+certificateRef(req), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(safeValue(req.IssuerName)), "", 1, "R", false, 0, "")
	pdf.CellFormat(128, 6, "", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "I", 10)
	pdf.CellFormat(0, 5, tr(safeValue(req.IssuerRole)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func bodyLines(req model.CertificateRequest) []string {
	var lines []string
	switch req.CertificateType {
	case model.CertificateTypeCompletion:
		lines = append(lines, "has successfully completed the academy training placement")
	case model.CertificateTypeAttendance:
		lines = append(lines, "has attended the academy training programme")
	default:
		lines = append(lines, "is recognised for outstanding achievement")
	}

	if dept := req.Student.DepartmentName(); dept != "" {
		lines = append(lines, "in the "+dept+" department")
	}
	if period := placementPeriod(req.Student); period != "" {
		lines = append(lines, period)
	}
	return lines
}

func placementPeriod(s model.Student) string {
	switch {
	case s.PlacementStart != nil && s.PlacementEnd != nil:
		return fmt.Sprintf("from %s to %s", formatDate(*s.PlacementStart), formatDate(*s.PlacementEnd))
	case s.PlacementEnd != nil:
		return "ending " + formatDate(*s.PlacementEnd)
	default:
		return ""
	}
}

func certificateRef(req model.CertificateRequest) string {
	id := strings.ToUpper(strings.ReplaceAll(req.Student.ID.String(), "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s", id, req.IssueDate.Format("20060102"))
}

// studentName falls back to the email, then to the short certificate reference,
// so incomplete student records still get a certificate.
func studentName(req model.CertificateRequest) string {
	if name := strings.TrimSpace(req.Student.FullName); name != "" {
		return name
	}
	if email := strings.TrimSpace(req.Student.Email); email != "" {
		return email
	}
	return "Student " + strings.SplitN(certificateRef(req), "-", 2)[0]
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 January 2006")
}
