package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repdesk/repdesk/internal/reporting"
)

func sampleReport() reporting.Report {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	last := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	return reporting.Report{
		Representative: reporting.Representative{ID: "u1", Name: "Sara <Admin>"},
		Period:         reporting.PeriodThisMonth,
		Range:          reporting.TimeRange{Start: &start, End: &end},
		TopN:           5,
		GeneratedAt:    last,
		Profile: reporting.Profile{
			VisitsCount:       2,
			OrdersCount:       2,
			TotalSales:        1400,
			TotalCollected:    150,
			CurrentDebt:       1250,
			BestClinicBySales: &reporting.AggregatedGroup{Key: "c2", Label: "Clinic Two", Value: 1300},
			TopClinicsBySales: []reporting.AggregatedGroup{
				{Key: "c2", Label: "Clinic Two", Value: 1300},
				{Key: reporting.UnknownKey, Label: reporting.UnknownKey, Value: 100},
			},
			TopProductsByRevenue: []reporting.AggregatedGroup{},
			TopProductsByQty:     []reporting.AggregatedGroup{{Key: "p1", Label: "Amoxil", Value: 12}},
			LastInvoice:          &last,
		},
	}
}

func readCSV(t *testing.T, raw []byte) [][]string {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteProfileCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	f := reporting.NewFormatter(reporting.FormatConfig{CurrencyUnit: "SAR", Locale: "en"})
	require.NoError(t, WriteProfileCSV(buf, sampleReport(), f))

	require.True(t, strings.HasPrefix(buf.String(), "\ufeff"), "csv must start with a BOM")
	records := readCSV(t, bytes.TrimPrefix(buf.Bytes(), []byte("\ufeff")))

	rows := map[string]string{}
	for _, r := range records {
		if len(r) == 2 {
			rows[r[0]] = r[1]
		}
	}
	assert.Equal(t, "1,400 SAR", rows["Total sales"])
	assert.Equal(t, "1,250 SAR", rows["Current debt"])
	assert.Equal(t, "Clinic Two", rows["Best clinic by sales"])
	assert.Equal(t, reporting.Placeholder, rows["Best product by quantity"])
	assert.Equal(t, reporting.Placeholder, rows["Last visit"])
	assert.Equal(t, "20 Mar 2024", rows["Last invoice"])
	assert.Equal(t, "100 SAR", rows["Unspecified"])
	assert.Equal(t, "12", rows["Amoxil"])
}

func TestWriteProfileCSVArabic(t *testing.T) {
	buf := &bytes.Buffer{}
	f := reporting.NewFormatter(reporting.FormatConfig{CurrencyUnit: "ر.س", Locale: "ar"})
	require.NoError(t, WriteProfileCSV(buf, sampleReport(), f))
	assert.Contains(t, buf.String(), "إجمالي المبيعات")
	assert.Contains(t, buf.String(), "غير محدد")
}

func TestBuildHTMLEscapesAndDirection(t *testing.T) {
	en := BuildHTML(PDFPayload{Report: sampleReport(), Formatter: reporting.NewFormatter(reporting.FormatConfig{Locale: "en"})})
	assert.Contains(t, en, `dir="ltr"`)
	assert.Contains(t, en, "Sara &lt;Admin&gt;")
	assert.NotContains(t, en, "<Admin>")
	assert.Contains(t, en, "No data for this period")

	ar := BuildHTML(PDFPayload{Report: sampleReport(), Formatter: reporting.NewFormatter(reporting.FormatConfig{Locale: "ar"})})
	assert.Contains(t, ar, `dir="rtl"`)
	assert.Contains(t, ar, `lang="ar"`)
}

type stubConverter struct {
	html string
	err  error
}

func (s *stubConverter) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	s.html = html
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF"), nil
}

func TestPDFExporterUsesHTMLRenderer(t *testing.T) {
	conv := &stubConverter{}
	exporter := NewPDFExporter(HTMLRenderer{Converter: conv})
	payload := PDFPayload{Report: sampleReport(), Formatter: reporting.NewFormatter(reporting.FormatConfig{Locale: "en"})}

	data, err := exporter.RenderProfile(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
	assert.Contains(t, conv.html, "Representative Report")

	conv.err = errors.New("gotenberg down")
	_, err = exporter.RenderProfile(context.Background(), payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gotenberg down")
}

func TestLocaleRouterSendsArabicToHTML(t *testing.T) {
	conv := &stubConverter{}
	router := LocaleRouter{Default: NewMarotoRenderer(), RTL: HTMLRenderer{Converter: conv}}

	ar := PDFPayload{Report: sampleReport(), Formatter: reporting.NewFormatter(reporting.FormatConfig{Locale: "ar"})}
	data, err := router.Render(context.Background(), ar)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
	assert.Contains(t, conv.html, `dir="rtl"`)

	conv.html = ""
	en := PDFPayload{Report: sampleReport(), Formatter: reporting.NewFormatter(reporting.FormatConfig{Locale: "en"})}
	data, err = router.Render(context.Background(), en)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Empty(t, conv.html)

	_, err = LocaleRouter{}.Render(context.Background(), en)
	assert.ErrorIs(t, err, ErrRendererMissing)
}

func TestPDFExporterNotInitialised(t *testing.T) {
	var exporter *PDFExporter
	_, err := exporter.RenderProfile(context.Background(), PDFPayload{})
	assert.ErrorIs(t, err, ErrRendererMissing)

	_, err = HTMLRenderer{}.Render(context.Background(), PDFPayload{})
	assert.ErrorIs(t, err, ErrRendererMissing)
}

func TestMarotoRendererProducesPDF(t *testing.T) {
	payload := PDFPayload{Report: sampleReport(), Formatter: reporting.NewFormatter(reporting.FormatConfig{CurrencyUnit: "SAR", Locale: "ar"})}
	data, err := NewMarotoRenderer().Render(context.Background(), payload)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestLabelsFallback(t *testing.T) {
	assert.Equal(t, "Representative Report", LabelsFor("fr").Title)
	assert.Equal(t, "Last month", LabelsFor("en").PeriodLabel("last_month"))
	assert.Equal(t, "weird", LabelsFor("en").PeriodLabel("weird"))
}
