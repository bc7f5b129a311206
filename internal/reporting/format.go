package reporting

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder renders missing values.
const Placeholder = "—"

// Kind selects a presentation format.
type Kind string

// Presentation kinds.
const (
	KindCurrency Kind = "currency"
	KindCount    Kind = "count"
	KindDate     Kind = "date"
)

// FormatConfig carries the site settings used for display and export.
type FormatConfig struct {
	CurrencyUnit string
	Locale       string
}

// Formatter renders report values for a locale. It holds no mutable state.
type Formatter struct {
	cfg     FormatConfig
	base    string
	printer *message.Printer
}

var monthNames = map[string][12]string{
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	"ar": {"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو", "يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر"},
}

var unknownLabels = map[string]string{
	"en": "Unspecified",
	"ar": "غير محدد",
}

// NewFormatter builds a Formatter. An unparseable locale leaves the
// formatter on plain integer output.
func NewFormatter(cfg FormatConfig) Formatter {
	f := Formatter{cfg: cfg, base: "en"}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = "en"
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return f
	}
	base, _ := tag.Base()
	f.base = base.String()
	f.printer = message.NewPrinter(tag)
	return f
}

// Config returns the settings the formatter was built with.
func (f Formatter) Config() FormatConfig { return f.cfg }

// Lang returns the base language of the formatter locale.
func (f Formatter) Lang() string { return f.base }

// RTL reports whether the locale is written right to left.
func (f Formatter) RTL() bool {
	switch f.base {
	case "ar", "fa", "he", "ur":
		return true
	}
	return false
}

// Currency renders v as whole currency units followed by the unit.
func (f Formatter) Currency(v float64) string {
	out := f.integer(v)
	if unit := strings.TrimSpace(f.cfg.CurrencyUnit); unit != "" {
		out += " " + unit
	}
	return out
}

// Count renders v as a grouped whole number.
func (f Formatter) Count(v float64) string {
	return f.integer(v)
}

// Date renders t as "day month year" with month names for the report
// languages (en, ar) and digits in the locale numbering system. Other
// locales get ISO 2006-01-02. A nil or zero t renders Placeholder.
func (f Formatter) Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	months, ok := monthNames[f.base]
	if !ok {
		return t.UTC().Format("2006-01-02")
	}
	u := t.UTC()
	return f.digits(u.Day()) + " " + months[u.Month()-1] + " " + f.digits(u.Year())
}

// digits prints n ungrouped in the locale numbering system.
func (f Formatter) digits(n int) (out string) {
	if f.printer == nil {
		return strconv.Itoa(n)
	}
	defer func() {
		if recover() != nil {
			out = strconv.Itoa(n)
		}
	}()
	return f.printer.Sprintf("%v", number.Decimal(n, number.NoSeparator()))
}

// Format dispatches on kind. Unsupported values render Placeholder.
func (f Formatter) Format(value any, kind Kind) string {
	switch kind {
	case KindCurrency, KindCount:
		n, ok := toFloat(value)
		if !ok {
			return Placeholder
		}
		if kind == KindCurrency {
			return f.Currency(n)
		}
		return f.Count(n)
	case KindDate:
		switch t := value.(type) {
		case time.Time:
			return f.Date(&t)
		case *time.Time:
			return f.Date(t)
		}
		return Placeholder
	}
	return Placeholder
}

// Label returns the display label of g, localising the unknown bucket.
func (f Formatter) Label(g AggregatedGroup) string {
	if g.Key == UnknownKey {
		return f.UnknownLabel()
	}
	return LabelOr(g.Label, g.Key)
}

// UnknownLabel returns the localised name of the unknown bucket.
func (f Formatter) UnknownLabel() string {
	if label, ok := unknownLabels[f.base]; ok {
		return label
	}
	return unknownLabels["en"]
}

func (f Formatter) integer(v float64) (out string) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	rounded := decimal.NewFromFloat(v).Round(0).IntPart()
	if f.printer == nil {
		return strconv.FormatInt(rounded, 10)
	}
	defer func() {
		if recover() != nil {
			out = strconv.FormatInt(rounded, 10)
		}
	}()
	return f.printer.Sprintf("%d", rounded)
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case decimal.Decimal:
		return val.InexactFloat64(), true
	case *float64:
		if val == nil {
			return 0, false
		}
		return *val, true
	}
	return 0, false
}
