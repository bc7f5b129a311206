package reporting

import "time"

// DefaultTopN is used when a caller does not pick a ranking bound.
const DefaultTopN = 5

// Dataset holds the raw collaborator arrays for one representative.
type Dataset struct {
	Orders      []Order      `json:"orders"`
	Visits      []Visit      `json:"visits"`
	Collections []Collection `json:"collections"`
}

// ProfileOptions scopes a profile build.
type ProfileOptions struct {
	ActorID string
	Range   TimeRange
	TopN    int
}

// Profile is the per-representative summary shown on the report page.
type Profile struct {
	VisitsCount          int               `json:"visitsCount"`
	OrdersCount          int               `json:"ordersCount"`
	TotalSales           float64           `json:"totalSales"`
	TotalCollected       float64           `json:"totalCollected"`
	CurrentDebt          float64           `json:"currentDebt"`
	BestClinicBySales    *AggregatedGroup  `json:"bestClinicBySales"`
	BestProductByQty     *AggregatedGroup  `json:"bestProductByQty"`
	TopClinicsBySales    []AggregatedGroup `json:"topClinicsBySales"`
	TopProductsByRevenue []AggregatedGroup `json:"topProductsByRevenue"`
	TopProductsByQty     []AggregatedGroup `json:"topProductsByQty"`
	LastVisit            *time.Time        `json:"lastVisit"`
	LastInvoice          *time.Time        `json:"lastInvoice"`
}

// BuildProfile filters ds to the actor and range, then aggregates and ranks
// it. The dataset is only read.
func BuildProfile(ds Dataset, opts ProfileOptions) Profile {
	orders := FilterByActorAndRange(OrderRecords(ds.Orders), opts.ActorID, opts.Range)
	visits := FilterByActorAndRange(VisitRecords(ds.Visits), opts.ActorID, opts.Range)
	collections := FilterByActorAndRange(CollectionRecords(ds.Collections), opts.ActorID, opts.Range)

	clinicSales := Aggregate(orders, RecordDimension, RecordLabel, SumAmount)
	lines := LineItemsOf(orders)
	productRevenue := Aggregate(lines, LineDimension, LineLabel, LineRevenue)
	productQty := Aggregate(lines, LineDimension, LineLabel, LineQuantity)
	collected := Aggregate(collections, RecordDimension, RecordLabel, SumAmount)

	p := Profile{
		VisitsCount:          len(visits),
		OrdersCount:          len(orders),
		TotalSales:           clinicSales.Total(),
		TotalCollected:       collected.Total(),
		BestClinicBySales:    Best(clinicSales),
		BestProductByQty:     Best(productQty),
		TopClinicsBySales:    Rank(clinicSales, opts.TopN),
		TopProductsByRevenue: Rank(productRevenue, opts.TopN),
		TopProductsByQty:     Rank(productQty, opts.TopN),
		LastVisit:            latest(visits),
		LastInvoice:          latest(orders),
	}
	if debt := p.TotalSales - p.TotalCollected; debt > 0 {
		p.CurrentDebt = debt
	}
	return p
}

func latest(records []Record) *time.Time {
	var out time.Time
	for _, r := range records {
		if r.OccurredAt.After(out) {
			out = r.OccurredAt
		}
	}
	if out.IsZero() {
		return nil
	}
	return &out
}
