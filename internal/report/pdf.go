package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

const yamcamURL = "https://github.com/cecat/CeC-HA-Addons/tree/main/yamcam3"

// Page geometry in inches (letter portrait).
const (
	pageMargin   = 0.75
	pageWidth    = 8.5
	contentWidth = pageWidth - 2*pageMargin

	pieImageWidth      = 3.4
	pieImageHeight     = 3.4
	timelineImageWidth = contentWidth
	timelineHeight     = 3.5

	legendSwatch     = 0.14
	legendRowHeight  = 0.22
	legendLabelWidth = 1.6
)

// assemblePDF lays the rendered sections out into the final document:
// a summary page, then each section's heading, legend, and image grid.
func assemblePDF(path string, data Data, sections []section) error {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 1.0)

	dateRange := ""
	if !data.Span.IsZero() {
		dateRange = fmt.Sprintf("%s - %s",
			data.Span.Start.Format("2006-01-02 15:04"),
			data.Span.End.Format("2006-01-02 15:04"))
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-0.7)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 0.2,
			fmt.Sprintf("Sound analysis (%s) with data from ", dateRange),
			"", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 255)
		pdf.CellFormat(0.7, 0.2, "Yamcam", "", 0, "L", false, 0, yamcamURL)
		pdf.SetTextColor(0, 0, 0)
	})

	addSummaryPage(pdf, data)
	for _, sec := range sections {
		addSectionPages(pdf, sec)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// addSummaryPage writes the title page with run statistics.
func addSummaryPage(pdf *fpdf.Fpdf, data Data) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 0.5, "Sound Log Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.Ln(0.2)

	cameras := make(map[string]bool)
	for _, rec := range data.Rows {
		cameras[rec.Camera] = true
	}

	lines := []string{
		fmt.Sprintf("Log file: %s", data.LogPath),
		fmt.Sprintf("Rows: %d total, %d valid, %d invalid", data.TotalRows, data.ValidRows, data.InvalidRows),
		fmt.Sprintf("Batches processed: %d", data.Batches),
		fmt.Sprintf("Cameras: %d", len(cameras)),
		fmt.Sprintf("Total detections: %d", data.Totals.TotalDetections()),
	}
	if !data.Span.IsZero() {
		lines = append(lines, fmt.Sprintf("Observed range: %s to %s",
			data.Span.Start.Format("2006-01-02 15:04:05"),
			data.Span.End.Format("2006-01-02 15:04:05")))
	}
	for _, line := range lines {
		pdf.CellFormat(0, 0.28, line, "", 1, "L", false, 0, "")
	}
}

// addSectionPages writes a section heading, its legend, and its images.
func addSectionPages(pdf *fpdf.Fpdf, sec section) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 0.35, sec.Title, "", 1, "L", false, 0, "")
	drawLegend(pdf, sec.Legend)
	pdf.Ln(0.15)

	imgWidth, imgHeight := pieImageWidth, pieImageHeight
	columns := 2
	if sec.Wide {
		imgWidth, imgHeight = timelineImageWidth, timelineHeight
		columns = 1
	}
	gutter := (contentWidth - float64(columns)*imgWidth) / float64(max(columns-1, 1))

	col := 0
	for _, img := range sec.Images {
		if col == 0 && pdf.GetY()+imgHeight > 10.0 {
			pdf.AddPage()
		}
		x := pageMargin + float64(col)*(imgWidth+gutter)
		y := pdf.GetY()
		pdf.ImageOptions(img, x, y, imgWidth, imgHeight, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		col++
		if col == columns {
			col = 0
			pdf.SetY(y + imgHeight + 0.15)
		}
	}
	if col != 0 {
		pdf.SetY(pdf.GetY() + imgHeight + 0.15)
	}
}

// drawLegend renders color swatches with labels, three to a row.
func drawLegend(pdf *fpdf.Fpdf, entries []legendEntry) {
	if len(entries) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "", 9)
	perRow := 3
	for i, e := range entries {
		col := i % perRow
		if col == 0 && i > 0 {
			pdf.Ln(legendRowHeight)
		}
		x := pageMargin + float64(col)*(legendSwatch+legendLabelWidth+0.2)
		y := pdf.GetY()
		pdf.SetFillColor(int(e.Color.R), int(e.Color.G), int(e.Color.B))
		pdf.Rect(x, y+0.04, legendSwatch, legendSwatch, "F")
		pdf.SetXY(x+legendSwatch+0.06, y)
		pdf.CellFormat(legendLabelWidth, legendRowHeight, truncateLabel(e.Label), "", 0, "L", false, 0, "")
	}
	pdf.Ln(legendRowHeight + 0.1)
}
