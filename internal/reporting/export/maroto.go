package export

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/repdesk/repdesk/internal/reporting"
)

var (
	colorPrimary = &props.Color{Red: 22, Green: 78, Blue: 99}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// MarotoRenderer lays the report out in process. The built-in fonts only
// cover Latin text, so captions and dates are always English and Arabic
// names in the data come out garbled. Pair it with an HTMLRenderer through
// LocaleRouter when reports are exported in Arabic.
type MarotoRenderer struct{}

// NewMarotoRenderer constructs the renderer.
func NewMarotoRenderer() MarotoRenderer { return MarotoRenderer{} }

// Render implements Renderer.
func (MarotoRenderer) Render(_ context.Context, payload PDFPayload) ([]byte, error) {
	f := reporting.NewFormatter(reporting.FormatConfig{CurrencyUnit: payload.Formatter.Config().CurrencyUnit, Locale: "en"})
	l := LabelsFor("en")
	report := payload.Report
	p := report.Profile

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(l.Title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(l, report, f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(
		metricRow(l.Visits, f.Count(float64(p.VisitsCount))),
		metricRow(l.Orders, f.Count(float64(p.OrdersCount))),
		metricRow(l.TotalSales, f.Currency(p.TotalSales)),
		metricRow(l.TotalCollected, f.Currency(p.TotalCollected)),
		metricRow(l.CurrentDebt, f.Currency(p.CurrentDebt)),
		metricRow(l.BestClinic, groupName(f, p.BestClinicBySales)),
		metricRow(l.BestProduct, groupName(f, p.BestProductByQty)),
		metricRow(l.LastVisit, f.Date(p.LastVisit)),
		metricRow(l.LastInvoice, f.Date(p.LastInvoice)),
	)

	m.AddRows(rankingRows(f, l, l.TopClinicsBySales, l.Sales, p.TopClinicsBySales, reporting.KindCurrency)...)
	m.AddRows(rankingRows(f, l, l.TopProductsByRevenue, l.Revenue, p.TopProductsByRevenue, reporting.KindCurrency)...)
	m.AddRows(rankingRows(f, l, l.TopProductsByQty, l.Quantity, p.TopProductsByQty, reporting.KindCount)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("export: generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(l Labels, report reporting.Report, f reporting.Formatter) core.Row {
	window := fmt.Sprintf("%s: %s (%s - %s)", l.Period, l.PeriodLabel(string(report.Period)), f.Date(report.Range.Start), f.Date(report.Range.End))
	return row.New(18).Add(
		col.New(12).Add(
			text.New(l.Title+" - "+report.Representative.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(window, props.Text{Size: 9, Top: 10, Color: colorGray}),
		),
	)
}

func metricRow(label, value string) core.Row {
	return row.New(7).Add(
		col.New(7).Add(text.New(label, props.Text{Size: 9, Top: 1})),
		col.New(5).Add(text.New(value, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1})),
	)
}

func rankingRows(f reporting.Formatter, l Labels, title, header string, groups []reporting.AggregatedGroup, kind reporting.Kind) []core.Row {
	rows := []core.Row{
		row.New(10).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 4,
		}))),
	}
	if len(groups) == 0 {
		return append(rows, row.New(7).Add(col.New(12).Add(text.New(l.Empty, props.Text{Size: 8, Color: colorGray, Top: 1}))))
	}
	rows = append(rows, row.New(7).Add(
		col.New(1).Add(text.New("#", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
		col.New(7).Add(text.New(l.Name, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
		col.New(4).Add(text.New(header, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1})),
	))
	for i, g := range groups {
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), props.Text{Size: 8, Top: 1})),
			col.New(7).Add(text.New(f.Label(g), props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(f.Format(g.Value, kind), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}
