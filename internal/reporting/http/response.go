package reportinghttp

import (
	"github.com/repdesk/repdesk/internal/reporting"
	"github.com/repdesk/repdesk/internal/reporting/export"
)

type formattedGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type formattedProfile struct {
	VisitsCount          string           `json:"visitsCount"`
	OrdersCount          string           `json:"ordersCount"`
	TotalSales           string           `json:"totalSales"`
	TotalCollected       string           `json:"totalCollected"`
	CurrentDebt          string           `json:"currentDebt"`
	BestClinicBySales    string           `json:"bestClinicBySales"`
	BestProductByQty     string           `json:"bestProductByQty"`
	LastVisit            string           `json:"lastVisit"`
	LastInvoice          string           `json:"lastInvoice"`
	RangeStart           string           `json:"rangeStart"`
	RangeEnd             string           `json:"rangeEnd"`
	PeriodLabel          string           `json:"periodLabel"`
	TopClinicsBySales    []formattedGroup `json:"topClinicsBySales"`
	TopProductsByRevenue []formattedGroup `json:"topProductsByRevenue"`
	TopProductsByQty     []formattedGroup `json:"topProductsByQty"`
}

type reportResponse struct {
	reporting.Report
	Lang      string           `json:"lang"`
	Dir       string           `json:"dir"`
	Formatted formattedProfile `json:"formatted"`
}

func newReportResponse(report reporting.Report, f reporting.Formatter) reportResponse {
	p := report.Profile
	dir := "ltr"
	if f.RTL() {
		dir = "rtl"
	}
	return reportResponse{
		Report: report,
		Lang:   f.Lang(),
		Dir:    dir,
		Formatted: formattedProfile{
			VisitsCount:          f.Count(float64(p.VisitsCount)),
			OrdersCount:          f.Count(float64(p.OrdersCount)),
			TotalSales:           f.Currency(p.TotalSales),
			TotalCollected:       f.Currency(p.TotalCollected),
			CurrentDebt:          f.Currency(p.CurrentDebt),
			BestClinicBySales:    bestLabel(f, p.BestClinicBySales),
			BestProductByQty:     bestLabel(f, p.BestProductByQty),
			LastVisit:            f.Date(p.LastVisit),
			LastInvoice:          f.Date(p.LastInvoice),
			RangeStart:           f.Date(report.Range.Start),
			RangeEnd:             f.Date(report.Range.End),
			PeriodLabel:          export.LabelsFor(f.Lang()).PeriodLabel(string(report.Period)),
			TopClinicsBySales:    formatGroups(f, p.TopClinicsBySales, reporting.KindCurrency),
			TopProductsByRevenue: formatGroups(f, p.TopProductsByRevenue, reporting.KindCurrency),
			TopProductsByQty:     formatGroups(f, p.TopProductsByQty, reporting.KindCount),
		},
	}
}

func formatGroups(f reporting.Formatter, groups []reporting.AggregatedGroup, kind reporting.Kind) []formattedGroup {
	out := make([]formattedGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, formattedGroup{Key: g.Key, Label: f.Label(g), Value: f.Format(g.Value, kind)})
	}
	return out
}

func bestLabel(f reporting.Formatter, g *reporting.AggregatedGroup) string {
	if g == nil {
		return reporting.Placeholder
	}
	return f.Label(*g)
}
