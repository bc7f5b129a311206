package export

import (
	"encoding/csv"
	"io"

	"github.com/repdesk/repdesk/internal/reporting"
)

// utf8BOM lets spreadsheet tools detect UTF-8 so Arabic labels survive.
const utf8BOM = "\ufeff"

// WriteProfileCSV serialises a representative report as sectioned CSV.
func WriteProfileCSV(w io.Writer, report reporting.Report, f reporting.Formatter) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	l := LabelsFor(f.Lang())
	p := report.Profile

	writer := csv.NewWriter(w)
	defer writer.Flush()

	records := [][]string{
		{l.Title},
		{l.Representative, report.Representative.Name},
		{l.Period, l.PeriodLabel(string(report.Period))},
		{l.From, f.Date(report.Range.Start)},
		{l.To, f.Date(report.Range.End)},
		{},
		{l.Metric, l.Value},
		{l.Visits, f.Count(float64(p.VisitsCount))},
		{l.Orders, f.Count(float64(p.OrdersCount))},
		{l.TotalSales, f.Currency(p.TotalSales)},
		{l.TotalCollected, f.Currency(p.TotalCollected)},
		{l.CurrentDebt, f.Currency(p.CurrentDebt)},
		{l.BestClinic, groupName(f, p.BestClinicBySales)},
		{l.BestProduct, groupName(f, p.BestProductByQty)},
		{l.LastVisit, f.Date(p.LastVisit)},
		{l.LastInvoice, f.Date(p.LastInvoice)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	sections := []struct {
		title  string
		header string
		groups []reporting.AggregatedGroup
		kind   reporting.Kind
	}{
		{l.TopClinicsBySales, l.Sales, p.TopClinicsBySales, reporting.KindCurrency},
		{l.TopProductsByRevenue, l.Revenue, p.TopProductsByRevenue, reporting.KindCurrency},
		{l.TopProductsByQty, l.Quantity, p.TopProductsByQty, reporting.KindCount},
	}
	for _, section := range sections {
		if err := writer.Write([]string{}); err != nil {
			return err
		}
		if err := writer.Write([]string{section.title}); err != nil {
			return err
		}
		if err := writer.Write([]string{l.Name, section.header}); err != nil {
			return err
		}
		for _, g := range section.groups {
			if err := writer.Write([]string{f.Label(g), f.Format(g.Value, section.kind)}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func groupName(f reporting.Formatter, g *reporting.AggregatedGroup) string {
	if g == nil {
		return reporting.Placeholder
	}
	return f.Label(*g)
}
