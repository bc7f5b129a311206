package reporting

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatterCurrencyAndCount(t *testing.T) {
	f := NewFormatter(FormatConfig{CurrencyUnit: "SAR", Locale: "en"})
	assert.Equal(t, "1,235 SAR", f.Currency(1234.6))
	assert.Equal(t, "0 SAR", f.Currency(0))
	assert.Equal(t, "12", f.Count(12))

	plain := NewFormatter(FormatConfig{Locale: "en"})
	assert.Equal(t, "400", plain.Currency(400))
}

func TestFormatterDate(t *testing.T) {
	f := NewFormatter(FormatConfig{Locale: "en"})
	ts := time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "5 Mar 2024", f.Date(&ts))
	assert.Equal(t, Placeholder, f.Date(nil))
	assert.Equal(t, Placeholder, f.Date(&time.Time{}))

	ar := NewFormatter(FormatConfig{Locale: "ar-SA"})
	year := ar.Count(2) + ar.Count(0) + ar.Count(2) + ar.Count(4)
	assert.Equal(t, ar.Count(5)+" مارس "+year, ar.Date(&ts))
	assert.True(t, ar.RTL())
	assert.Equal(t, "ar", ar.Lang())
}

func TestFormatterDateUsesLocaleDigits(t *testing.T) {
	ar := NewFormatter(FormatConfig{CurrencyUnit: "SAR", Locale: "ar"})
	ts := time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)
	date := ar.Date(&ts)
	assert.Contains(t, date, "نوفمبر")
	assert.True(t, strings.HasPrefix(date, ar.Count(2)+ar.Count(8)+" "), date)
	if ar.Count(1) != "1" {
		assert.False(t, strings.ContainsAny(date, "0123456789"), date)
	}
}

func TestFormatterDateOtherLocalesUseISO(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	for _, locale := range []string{"de", "fr-FR"} {
		f := NewFormatter(FormatConfig{Locale: locale})
		assert.Equal(t, "2024-03-05", f.Date(&ts), locale)
	}
}

func TestFormatterFormatDispatch(t *testing.T) {
	f := NewFormatter(FormatConfig{CurrencyUnit: "SAR", Locale: "en"})
	ts := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2,000 SAR", f.Format(decimal.NewFromInt(2000), KindCurrency))
	assert.Equal(t, "7", f.Format(7, KindCount))
	assert.Equal(t, "5 Mar 2024", f.Format(ts, KindDate))
	assert.Equal(t, Placeholder, f.Format((*time.Time)(nil), KindDate))
	assert.Equal(t, Placeholder, f.Format("abc", KindCurrency))
	assert.Equal(t, Placeholder, f.Format(math.NaN(), KindCount))
	assert.Equal(t, Placeholder, f.Format(1, Kind("percent")))
}

func TestFormatterBadLocaleFallsBack(t *testing.T) {
	f := NewFormatter(FormatConfig{Locale: "!!"})
	assert.Equal(t, "en", f.Lang())
	assert.Equal(t, "1235", f.Count(1235))
	assert.False(t, f.RTL())
}

func TestFormatterLabels(t *testing.T) {
	en := NewFormatter(FormatConfig{Locale: "en"})
	ar := NewFormatter(FormatConfig{Locale: "ar"})
	unknown := AggregatedGroup{Key: UnknownKey, Label: UnknownKey}

	assert.Equal(t, "Unspecified", en.Label(unknown))
	assert.Equal(t, "غير محدد", ar.Label(unknown))
	assert.Equal(t, "Clinic One", en.Label(AggregatedGroup{Key: "c1", Label: "Clinic One"}))
	assert.Equal(t, "c1", en.Label(AggregatedGroup{Key: "c1"}))
}
