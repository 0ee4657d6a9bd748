package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// MIME returns the content type of files in format f.
func (f Format) MIME() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// FileName is <entity>-export-<YYYY-MM-DD>.<ext>.
func FileName(entity string, f Format, day time.Time) string {
	return fmt.Sprintf("%s-export-%s.%s", entity, day.Format("2006-01-02"), f)
}

// Column maps a record to one exported cell.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

func Header[T any](cols []Column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

func Rows[T any](items []T, cols []Column[T]) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Value(item)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the header then every row. Fields containing commas,
// quotes or newlines are quoted.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV is the inverse of WriteCSV.
func ReadCSV(r io.Reader) (header []string, rows [][]string, err error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// WriteXLSX writes one sheet with a styled header row.
func WriteXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if len(header) > 0 {
		last, _ := excelize.ColumnNumberToName(len(header))
		_ = f.SetColWidth(sheet, "A", last, 20)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// ReportTable flattens a report into header and rows.
func ReportTable(r models.Report) ([]string, [][]string) {
	header := []string{"Period", "Count", "Amount"}
	rows := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		rows = append(rows, []string{row.Period, fmt.Sprint(row.Count), formatAmount(row.Amount)})
	}
	rows = append(rows, []string{"Total", fmt.Sprint(r.TotalCount), formatAmount(r.TotalAmount)})
	return header, rows
}

// WriteReportPDF renders a report as a single-table A4 document.
func WriteReportPDF(w io.Writer, r models.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(reportTitle(r.Kind), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, reportTitle(r.Kind))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s - %s", r.StartDate, r.EndDate))
	pdf.Ln(7)
	if r.GroupBy != "" {
		pdf.Cell(0, 7, "Grouped by: "+r.GroupBy)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	header, rows := ReportTable(r)
	widths := []float64{80, 40, 60}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(221, 235, 247)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for i, row := range rows {
		if i == len(rows)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		for j, v := range row {
			align := "R"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func reportTitle(kind models.ReportKind) string {
	switch kind {
	case models.ReportRevenue:
		return "Revenue report"
	case models.ReportBookings:
		return "Bookings report"
	case models.ReportActivity:
		return "Activity report"
	default:
		return "Report"
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
