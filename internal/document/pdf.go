// Package document lays out the printable evaluation report as an A4 PDF.
package document

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
)

const (
	fontFamily = "Helvetica"
	margin     = 15.0
	lineHeight = 5.5
)

var (
	ink     = [3]int{17, 24, 39}
	muted   = [3]int{156, 163, 175}
	accent  = [3]int{79, 70, 229}
	track   = [3]int{243, 244, 246}
	divider = [3]int{229, 231, 235}
)

// Input is everything the printed report shows.
type Input struct {
	Evaluation models.EvaluationData
	Blocks     []narrative.Block
	Catalog    *rubric.Catalog
	// PrintedAt is shown in the header and footer. Zero means now.
	PrintedAt time.Time
}

type writer struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	width float64
}

// Write renders in as a PDF to w.
func Write(w io.Writer, in Input) error {
	if in.Catalog == nil {
		in.Catalog = rubric.Default()
	}
	if in.PrintedAt.IsZero() {
		in.PrintedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle("Avaliação Mensal", true)
	pdf.SetCreator("avalia-o-desempenho", true)

	pageW, _ := pdf.GetPageSize()
	d := &writer{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageW - 2*margin,
	}

	pdf.AddPage()
	d.header(in.Evaluation, in.PrintedAt)
	d.infoGrid(in.Evaluation)
	d.competencies(in.Evaluation.Ratings, in.Catalog)
	d.analysis(in.Blocks)
	d.observations(in.Evaluation.Observations)
	d.signatures(in.Evaluation)
	d.footer(in.PrintedAt)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("document: layout: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("document: write: %w", err)
	}
	return nil
}

func (d *writer) color(c [3]int) {
	d.pdf.SetTextColor(c[0], c[1], c[2])
}

func (d *writer) sectionTitle(title string) {
	d.pdf.Ln(4)
	y := d.pdf.GetY()
	d.pdf.SetFillColor(accent[0], accent[1], accent[2])
	d.pdf.Rect(margin, y+2, 10, 1.5, "F")
	d.pdf.SetX(margin + 13)
	d.pdf.SetFont(fontFamily, "B", 9)
	d.color(ink)
	d.pdf.CellFormat(0, 6, d.tr(strings.ToUpper(title)), "", 1, "L", false, 0, "")
	d.pdf.Ln(3)
}

func (d *writer) header(ev models.EvaluationData, printedAt time.Time) {
	top := d.pdf.GetY()

	d.pdf.SetFont(fontFamily, "B", 24)
	d.color(ink)
	d.pdf.CellFormat(d.width*0.65, 11, d.tr("AVALIAÇÃO MENSAL"), "", 2, "L", false, 0, "")
	d.pdf.SetFont(fontFamily, "B", 8)
	d.color(accent)
	d.pdf.CellFormat(d.width*0.65, 5, d.tr("GESTÃO OPERACIONAL DE EQUIPES"), "", 0, "L", false, 0, "")

	right := margin + d.width*0.65
	d.pdf.SetXY(right, top+1)
	d.pdf.SetFont(fontFamily, "B", 6)
	d.color(muted)
	d.pdf.CellFormat(d.width*0.35, 4, d.tr("REGISTRO DIGITAL"), "", 2, "R", false, 0, "")
	d.pdf.SetFont("Courier", "B", 9)
	d.color(ink)
	d.pdf.CellFormat(d.width*0.35, 5, d.tr("ID: "+strings.ToUpper(ev.ID)), "", 2, "R", false, 0, "")
	d.pdf.SetFont(fontFamily, "", 8)
	d.color(muted)
	d.pdf.CellFormat(d.width*0.35, 5, printedAt.Format("02/01/2006"), "", 2, "R", false, 0, "")

	y := top + 20
	d.pdf.SetFillColor(ink[0], ink[1], ink[2])
	d.pdf.Rect(margin, y, d.width, 2, "F")
	d.pdf.SetXY(margin, y+8)
}

func (d *writer) infoGrid(ev models.EvaluationData) {
	col := d.width / 2
	fields := [][2]string{
		{"Colaborador", ev.EmployeeName},
		{"Período Avaliado", ev.ReferenceMonth},
		{"Cargo / Função", ev.Role},
		{"Avaliador Responsável", ev.Evaluator},
	}
	for i := 0; i < len(fields); i += 2 {
		y := d.pdf.GetY()
		for j := 0; j < 2; j++ {
			f := fields[i+j]
			x := margin + float64(j)*col
			d.pdf.SetXY(x, y)
			d.pdf.SetFont(fontFamily, "B", 6)
			d.color(muted)
			d.pdf.CellFormat(col-6, 4, d.tr(strings.ToUpper(f[0])), "", 2, "L", false, 0, "")
			d.pdf.SetFont(fontFamily, "B", 11)
			d.color(ink)
			d.pdf.SetDrawColor(divider[0], divider[1], divider[2])
			d.pdf.CellFormat(col-6, 7, d.tr(f[1]), "B", 0, "L", false, 0, "")
		}
		d.pdf.SetXY(margin, y+14)
	}
	d.pdf.Ln(2)
}

// competencies draws one bar per rated criterion, in catalog order, followed
// by any stored criteria the catalog does not know.
func (d *writer) competencies(ratings map[string]rubric.Rating, catalog *rubric.Catalog) {
	d.sectionTitle("Resumo Visual de Competências")
	if len(ratings) == 0 {
		d.pdf.SetFont(fontFamily, "I", 9)
		d.color(muted)
		d.pdf.CellFormat(0, 6, d.tr("Nenhum critério avaliado."), "", 1, "L", false, 0, "")
		return
	}

	ordered := make([]string, 0, len(ratings))
	for _, c := range catalog.Criteria() {
		if _, ok := ratings[c]; ok {
			ordered = append(ordered, c)
		}
	}
	var extra []string
	for c := range ratings {
		if !catalog.Has(c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	ordered = append(ordered, extra...)

	for _, criterion := range ordered {
		r := ratings[criterion]
		label := r.String()
		fill := muted
		if opt, ok := catalog.Option(r); ok {
			label = opt.Label
			fill = hexRGB(opt.Color, muted)
		}

		d.pdf.SetFont(fontFamily, "B", 7)
		d.color(ink)
		d.pdf.CellFormat(d.width-25, 4, d.tr(strings.ToUpper(criterion)), "", 0, "L", false, 0, "")
		d.pdf.SetTextColor(fill[0], fill[1], fill[2])
		d.pdf.CellFormat(25, 4, d.tr(strings.ToUpper(label)), "", 1, "R", false, 0, "")

		y := d.pdf.GetY() + 0.5
		d.pdf.SetFillColor(track[0], track[1], track[2])
		d.pdf.Rect(margin, y, d.width, 2, "F")
		d.pdf.SetFillColor(fill[0], fill[1], fill[2])
		d.pdf.Rect(margin, y, d.width*float64(r.Percent())/100, 2, "F")
		d.pdf.SetY(y + 5)
	}
}

func (d *writer) analysis(blocks []narrative.Block) {
	d.sectionTitle("Análise Qualitativa Detalhada")
	d.color(ink)

	for _, b := range blocks {
		switch b.Kind {
		case narrative.Spacer:
			d.pdf.Ln(lineHeight / 2)
		case narrative.Heading1:
			d.runs(b.Runs, 15, 8)
			d.pdf.Ln(9)
		case narrative.Heading2:
			d.runs(b.Runs, 13, 7)
			d.pdf.Ln(8)
		case narrative.Heading3:
			d.runs(b.Runs, 11, 6)
			d.pdf.Ln(7)
		case narrative.ListItem:
			d.pdf.SetFont(fontFamily, "B", 10)
			d.color(accent)
			d.pdf.CellFormat(6, lineHeight, d.tr("•"), "", 0, "C", false, 0, "")
			d.color(ink)
			d.runs(b.Runs, 10, lineHeight)
			d.pdf.Ln(lineHeight + 1)
		default:
			d.runs(b.Runs, 10, lineHeight)
			d.pdf.Ln(lineHeight + 1)
		}
	}
}

// runs writes inline text with flowing line breaks. Headings are all bold.
func (d *writer) runs(runs []narrative.Run, size, height float64) {
	heading := size > 10
	for _, r := range runs {
		style := ""
		if r.Bold || heading {
			style = "B"
		}
		d.pdf.SetFont(fontFamily, style, size)
		d.pdf.Write(height, d.tr(r.Text))
	}
}

func (d *writer) observations(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	d.pdf.Ln(6)
	d.pdf.SetFont(fontFamily, "B", 7)
	d.color(accent)
	d.pdf.CellFormat(0, 5, d.tr("NOTAS SUPLEMENTARES DO AVALIADOR"), "", 1, "L", false, 0, "")
	d.pdf.SetFont(fontFamily, "I", 10)
	d.color(ink)
	d.pdf.SetDrawColor(divider[0], divider[1], divider[2])
	d.pdf.MultiCell(0, lineHeight+0.5, d.tr(text), "L", "L", false)
}

func (d *writer) signatures(ev models.EvaluationData) {
	_, pageH := d.pdf.GetPageSize()
	if d.pdf.GetY() > pageH-70 {
		d.pdf.AddPage()
	}
	d.pdf.Ln(20)

	col := (d.width - 20) / 2
	y := d.pdf.GetY()
	sigs := [][3]string{
		{ev.EmployeeSignature, "Assinatura do Colaborador", ev.EmployeeName},
		{ev.EvaluatorSignature, "Assinatura do Avaliador", ev.Evaluator},
	}
	for i, s := range sigs {
		x := margin + float64(i)*(col+20)
		d.pdf.SetXY(x, y)
		d.pdf.SetFont("Times", "I", 16)
		d.color(ink)
		d.pdf.SetDrawColor(ink[0], ink[1], ink[2])
		d.pdf.SetLineWidth(0.5)
		d.pdf.CellFormat(col, 12, d.tr(s[0]), "B", 2, "C", false, 0, "")
		d.pdf.SetLineWidth(0.2)
		d.pdf.SetFont(fontFamily, "B", 7)
		d.color(muted)
		d.pdf.CellFormat(col, 6, d.tr(strings.ToUpper(s[1])), "", 2, "C", false, 0, "")
		d.pdf.SetFont(fontFamily, "B", 6)
		d.pdf.CellFormat(col, 4, d.tr(strings.ToUpper(s[2])), "", 0, "C", false, 0, "")
	}
	d.pdf.SetXY(margin, y+26)
}

func (d *writer) footer(printedAt time.Time) {
	d.pdf.Ln(10)
	d.pdf.SetDrawColor(divider[0], divider[1], divider[2])
	d.pdf.Line(margin, d.pdf.GetY(), margin+d.width, d.pdf.GetY())
	d.pdf.Ln(4)
	d.pdf.SetFont(fontFamily, "B", 6)
	d.color(muted)
	text := fmt.Sprintf("AUTENTICAÇÃO VIA GESTÃO OPERACIONAL • CONFIDENCIAL • %d", printedAt.Year())
	d.pdf.CellFormat(0, 4, d.tr(text), "", 1, "C", false, 0, "")
}

// hexRGB parses "#rrggbb", returning fallback when malformed.
func hexRGB(hex string, fallback [3]int) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return fallback
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return fallback
		}
		out[i] = int(v)
	}
	return out
}
