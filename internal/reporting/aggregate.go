package reporting

import "strings"

// AggregatedGroup is the accumulated value for one grouping key.
type AggregatedGroup struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Groups accumulates AggregatedGroup values by key and remembers the order in
// which keys were first seen.
type Groups struct {
	order []string
	byKey map[string]*AggregatedGroup
}

// NewGroups returns an empty accumulator.
func NewGroups() *Groups {
	return &Groups{byKey: make(map[string]*AggregatedGroup)}
}

// Add accumulates delta under key. The label is fixed by the first Add for a
// key; later labels for the same key are ignored.
func (g *Groups) Add(key, label string, delta float64) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = UnknownKey
	}
	entry, ok := g.byKey[key]
	if !ok {
		entry = &AggregatedGroup{Key: key, Label: LabelOr(label, key)}
		g.byKey[key] = entry
		g.order = append(g.order, key)
	}
	entry.Value += delta
}

// Get returns a copy of the group stored under key.
func (g *Groups) Get(key string) (AggregatedGroup, bool) {
	if g == nil {
		return AggregatedGroup{}, false
	}
	entry, ok := g.byKey[key]
	if !ok {
		return AggregatedGroup{}, false
	}
	return *entry, true
}

// Len returns the number of distinct keys.
func (g *Groups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Total sums the value of every group.
func (g *Groups) Total() float64 {
	if g == nil {
		return 0
	}
	var total float64
	for _, key := range g.order {
		total += g.byKey[key].Value
	}
	return total
}

// Slice returns copies of the groups in first-seen order.
func (g *Groups) Slice() []AggregatedGroup {
	if g == nil {
		return []AggregatedGroup{}
	}
	out := make([]AggregatedGroup, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.byKey[key])
	}
	return out
}

// Aggregate groups items by key and sums value per group.
func Aggregate[T any](items []T, key, label func(T) string, value func(T) float64) *Groups {
	groups := NewGroups()
	for _, item := range items {
		groups.Add(key(item), label(item), value(item))
	}
	return groups
}

// RecordDimension keys a record by its dimension id.
func RecordDimension(r Record) string { return r.DimensionID }

// RecordLabel labels a record by its dimension label.
func RecordLabel(r Record) string { return r.DimensionLabel }

// SumAmount reduces records by amount.
func SumAmount(r Record) float64 { return r.Amount }

// CountOne reduces records by occurrence.
func CountOne(Record) float64 { return 1 }

// LineDimension keys a line item by product.
func LineDimension(l LineItem) string { return l.DimensionID }

// LineLabel labels a line item by product name.
func LineLabel(l LineItem) string { return l.Label }

// LineRevenue reduces line items by price times quantity.
func LineRevenue(l LineItem) float64 { return l.UnitPrice * l.Quantity }

// LineQuantity reduces line items by quantity.
func LineQuantity(l LineItem) float64 { return l.Quantity }
