package reporting

import (
	"strings"
	"time"
)

// UnknownKey collects records whose dimension id is missing.
const UnknownKey = "unknown"

// Order is an order as loaded from storage. Numeric fields are optional
// because older rows carry either total_amount or total.
type Order struct {
	ID               string      `json:"id"`
	RepresentativeID string      `json:"representativeId"`
	OrderDate        *time.Time  `json:"orderDate,omitempty"`
	TotalAmount      *float64    `json:"totalAmount,omitempty"`
	Total            *float64    `json:"total,omitempty"`
	ClinicID         string      `json:"clinicId,omitempty"`
	ClinicName       string      `json:"clinicName,omitempty"`
	Items            []OrderItem `json:"items,omitempty"`
}

// OrderItem is one product line on an order.
type OrderItem struct {
	ProductID   string   `json:"productId,omitempty"`
	ProductName string   `json:"productName,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
}

// Visit is a logged clinic visit.
type Visit struct {
	ID               string     `json:"id"`
	RepresentativeID string     `json:"representativeId"`
	VisitDate        *time.Time `json:"visitDate,omitempty"`
	ClinicID         string     `json:"clinicId,omitempty"`
	ClinicName       string     `json:"clinicName,omitempty"`
}

// Collection is a payment collected from a clinic.
type Collection struct {
	ID               string     `json:"id"`
	RepresentativeID string     `json:"representativeId"`
	CollectionDate   *time.Time `json:"collectionDate,omitempty"`
	Amount           *float64   `json:"amount,omitempty"`
	ClinicID         string     `json:"clinicId,omitempty"`
	ClinicName       string     `json:"clinicName,omitempty"`
}

// Record is the normalised transaction the engine works on.
type Record struct {
	ActorID        string
	OccurredAt     time.Time
	Amount         float64
	DimensionID    string
	DimensionLabel string
	LineItems      []LineItem
}

// LineItem is a normalised product line.
type LineItem struct {
	DimensionID string
	Label       string
	UnitPrice   float64
	Quantity    float64
}

// AmountOrZero returns the first set, non-zero value or 0.
func AmountOrZero(values ...*float64) float64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}

// DimensionOrUnknown returns id or UnknownKey when id is blank.
func DimensionOrUnknown(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownKey
	}
	return id
}

// LabelOr returns label or fallback when label is blank.
func LabelOr(label, fallback string) string {
	if strings.TrimSpace(label) == "" {
		return fallback
	}
	return label
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

// OrderRecord normalises an order. The amount falls back from totalAmount to
// total to the sum of its lines.
func OrderRecord(o Order) Record {
	items := make([]LineItem, 0, len(o.Items))
	var linesTotal float64
	for _, item := range o.Items {
		line := LineItem{
			DimensionID: DimensionOrUnknown(item.ProductID),
			Label:       item.ProductName,
			UnitPrice:   AmountOrZero(item.Price),
			Quantity:    AmountOrZero(item.Quantity),
		}
		// Lines without a product id are keyed by name when one is present.
		if line.DimensionID == UnknownKey && strings.TrimSpace(item.ProductName) != "" {
			line.DimensionID = strings.TrimSpace(item.ProductName)
		}
		linesTotal += line.UnitPrice * line.Quantity
		items = append(items, line)
	}
	amount := AmountOrZero(o.TotalAmount, o.Total)
	if amount == 0 {
		amount = linesTotal
	}
	return Record{
		ActorID:        o.RepresentativeID,
		OccurredAt:     timeOrZero(o.OrderDate),
		Amount:         amount,
		DimensionID:    DimensionOrUnknown(o.ClinicID),
		DimensionLabel: o.ClinicName,
		LineItems:      items,
	}
}

// OrderRecords normalises a slice of orders.
func OrderRecords(orders []Order) []Record {
	out := make([]Record, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderRecord(o))
	}
	return out
}

// VisitRecord normalises a visit. Visits carry no amount.
func VisitRecord(v Visit) Record {
	return Record{
		ActorID:        v.RepresentativeID,
		OccurredAt:     timeOrZero(v.VisitDate),
		DimensionID:    DimensionOrUnknown(v.ClinicID),
		DimensionLabel: v.ClinicName,
	}
}

// VisitRecords normalises a slice of visits.
func VisitRecords(visits []Visit) []Record {
	out := make([]Record, 0, len(visits))
	for _, v := range visits {
		out = append(out, VisitRecord(v))
	}
	return out
}

// CollectionRecord normalises a collection.
func CollectionRecord(c Collection) Record {
	return Record{
		ActorID:        c.RepresentativeID,
		OccurredAt:     timeOrZero(c.CollectionDate),
		Amount:         AmountOrZero(c.Amount),
		DimensionID:    DimensionOrUnknown(c.ClinicID),
		DimensionLabel: c.ClinicName,
	}
}

// CollectionRecords normalises a slice of collections.
func CollectionRecords(collections []Collection) []Record {
	out := make([]Record, 0, len(collections))
	for _, c := range collections {
		out = append(out, CollectionRecord(c))
	}
	return out
}

// LineItemsOf flattens the product lines of records.
func LineItemsOf(records []Record) []LineItem {
	var out []LineItem
	for _, r := range records {
		out = append(out, r.LineItems...)
	}
	return out
}
