package export

// Labels holds the captions used by the CSV and PDF layouts.
type Labels struct {
	Title                string
	Representative       string
	Period               string
	From                 string
	To                   string
	GeneratedAt          string
	Metric               string
	Value                string
	Name                 string
	Visits               string
	Orders               string
	TotalSales           string
	TotalCollected       string
	CurrentDebt          string
	BestClinic           string
	BestProduct          string
	LastVisit            string
	LastInvoice          string
	TopClinicsBySales    string
	TopProductsByRevenue string
	TopProductsByQty     string
	Revenue              string
	Quantity             string
	Sales                string
	Empty                string
	Periods              map[string]string
}

var labelSets = map[string]Labels{
	"en": {
		Title:                "Representative Report",
		Representative:       "Representative",
		Period:               "Period",
		From:                 "From",
		To:                   "To",
		GeneratedAt:          "Generated at",
		Metric:               "Metric",
		Value:                "Value",
		Name:                 "Name",
		Visits:               "Visits",
		Orders:               "Orders",
		TotalSales:           "Total sales",
		TotalCollected:       "Total collected",
		CurrentDebt:          "Current debt",
		BestClinic:           "Best clinic by sales",
		BestProduct:          "Best product by quantity",
		LastVisit:            "Last visit",
		LastInvoice:          "Last invoice",
		TopClinicsBySales:    "Top clinics by sales",
		TopProductsByRevenue: "Top products by revenue",
		TopProductsByQty:     "Top products by quantity",
		Revenue:              "Revenue",
		Quantity:             "Quantity",
		Sales:                "Sales",
		Empty:                "No data for this period",
		Periods: map[string]string{
			"this_month":    "This month",
			"last_month":    "Last month",
			"last_3_months": "Last 3 months",
			"ytd":           "Year to date",
			"custom":        "Custom range",
		},
	},
	"ar": {
		Title:                "تقرير المندوب",
		Representative:       "المندوب",
		Period:               "الفترة",
		From:                 "من",
		To:                   "إلى",
		GeneratedAt:          "تاريخ الإنشاء",
		Metric:               "المؤشر",
		Value:                "القيمة",
		Name:                 "الاسم",
		Visits:               "الزيارات",
		Orders:               "الطلبات",
		TotalSales:           "إجمالي المبيعات",
		TotalCollected:       "إجمالي التحصيل",
		CurrentDebt:          "المديونية الحالية",
		BestClinic:           "أفضل عيادة مبيعاً",
		BestProduct:          "أفضل منتج كمية",
		LastVisit:            "آخر زيارة",
		LastInvoice:          "آخر فاتورة",
		TopClinicsBySales:    "أعلى العيادات مبيعاً",
		TopProductsByRevenue: "أعلى المنتجات إيراداً",
		TopProductsByQty:     "أعلى المنتجات كمية",
		Revenue:              "الإيراد",
		Quantity:             "الكمية",
		Sales:                "المبيعات",
		Empty:                "لا توجد بيانات لهذه الفترة",
		Periods: map[string]string{
			"this_month":    "هذا الشهر",
			"last_month":    "الشهر الماضي",
			"last_3_months": "آخر 3 أشهر",
			"ytd":           "منذ بداية السنة",
			"custom":        "فترة مخصصة",
		},
	},
}

// LabelsFor returns the captions for lang, defaulting to English.
func LabelsFor(lang string) Labels {
	if l, ok := labelSets[lang]; ok {
		return l
	}
	return labelSets["en"]
}

// PeriodLabel returns the caption of a period name, or the name itself.
func (l Labels) PeriodLabel(period string) string {
	if v, ok := l.Periods[period]; ok {
		return v
	}
	return period
}
