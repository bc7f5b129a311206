package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/repdesk/repdesk/internal/reporting"
)

// PDFPayload carries a report and the formatter used to present it.
type PDFPayload struct {
	Report    reporting.Report
	Formatter reporting.Formatter
}

// BuildHTML renders the printable report page. Right to left locales flip
// the document direction and table alignment.
func BuildHTML(payload PDFPayload) string {
	f := payload.Formatter
	l := LabelsFor(f.Lang())
	report := payload.Report
	p := report.Profile

	dir, start, end := "ltr", "left", "right"
	if f.RTL() {
		dir, start, end = "rtl", "right", "left"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<html lang=\"%s\" dir=\"%s\"><head><meta charset=\"utf-8\"><style>", templateEscape(f.Lang()), dir)
	b.WriteString("body{font-family:'Noto Sans','Noto Naskh Arabic',sans-serif;margin:24px;}h1{font-size:20px;}h2{font-size:15px;margin-top:20px;}")
	fmt.Fprintf(&b, "table{width:100%%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:%s;}th{text-align:%s;background:#f5f5f5;} .metric-label{text-align:%s;} .meta{color:#666;font-size:12px;}", end, start, start)
	b.WriteString("</style></head><body>")

	fmt.Fprintf(&b, "<h1>%s – %s</h1>", templateEscape(l.Title), templateEscape(report.Representative.Name))
	fmt.Fprintf(&b, "<p class=\"meta\">%s: %s (%s – %s)</p>",
		templateEscape(l.Period),
		templateEscape(l.PeriodLabel(string(report.Period))),
		templateEscape(f.Date(report.Range.Start)),
		templateEscape(f.Date(report.Range.End)),
	)

	b.WriteString("<section><table><tbody>")
	writeMetricRow(&b, l.Visits, f.Count(float64(p.VisitsCount)))
	writeMetricRow(&b, l.Orders, f.Count(float64(p.OrdersCount)))
	writeMetricRow(&b, l.TotalSales, f.Currency(p.TotalSales))
	writeMetricRow(&b, l.TotalCollected, f.Currency(p.TotalCollected))
	writeMetricRow(&b, l.CurrentDebt, f.Currency(p.CurrentDebt))
	writeMetricRow(&b, l.BestClinic, groupName(f, p.BestClinicBySales))
	writeMetricRow(&b, l.BestProduct, groupName(f, p.BestProductByQty))
	writeMetricRow(&b, l.LastVisit, f.Date(p.LastVisit))
	writeMetricRow(&b, l.LastInvoice, f.Date(p.LastInvoice))
	b.WriteString("</tbody></table></section>")

	writeRanking(&b, f, l, l.TopClinicsBySales, l.Sales, p.TopClinicsBySales, reporting.KindCurrency)
	writeRanking(&b, f, l, l.TopProductsByRevenue, l.Revenue, p.TopProductsByRevenue, reporting.KindCurrency)
	writeRanking(&b, f, l, l.TopProductsByQty, l.Quantity, p.TopProductsByQty, reporting.KindCount)

	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	fmt.Fprintf(&b, "<p class=\"meta\">%s: %s</p>", templateEscape(l.GeneratedAt), templateEscape(f.Date(&generated)))
	b.WriteString("</body></html>")
	return b.String()
}

func writeRanking(b *strings.Builder, f reporting.Formatter, l Labels, title, header string, groups []reporting.AggregatedGroup, kind reporting.Kind) {
	fmt.Fprintf(b, "<section><h2>%s</h2>", templateEscape(title))
	if len(groups) == 0 {
		fmt.Fprintf(b, "<p class=\"meta\">%s</p></section>", templateEscape(l.Empty))
		return
	}
	fmt.Fprintf(b, "<table><thead><tr><th>#</th><th>%s</th><th>%s</th></tr></thead><tbody>", templateEscape(l.Name), templateEscape(header))
	for i, g := range groups {
		fmt.Fprintf(b, "<tr><td>%d</td><td class=\"metric-label\">%s</td><td>%s</td></tr>", i+1, templateEscape(f.Label(g)), templateEscape(f.Format(g.Value, kind)))
	}
	b.WriteString("</tbody></table></section>")
}

func writeMetricRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><td class=\"metric-label\">")
	b.WriteString(templateEscape(label))
	b.WriteString("</td><td>")
	b.WriteString(templateEscape(value))
	b.WriteString("</td></tr>")
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&#39;",
)

func templateEscape(v string) string {
	return htmlEscaper.Replace(v)
}
