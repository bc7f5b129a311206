package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchDataset() Dataset {
	return Dataset{
		Orders: []Order{
			{
				ID: "o1", RepresentativeID: "u1", ClinicID: "c1", ClinicName: "Clinic One",
				OrderDate:   tptr(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
				TotalAmount: fptr(100),
				Items: []OrderItem{
					{ProductID: "p1", ProductName: "Amoxil", Price: fptr(10), Quantity: fptr(10)},
				},
			},
			{
				ID: "o2", RepresentativeID: "u1", ClinicID: "c2", ClinicName: "Clinic Two",
				OrderDate:   tptr(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)),
				TotalAmount: fptr(300),
				Items: []OrderItem{
					{ProductID: "p2", ProductName: "Panadol", Price: fptr(2), Quantity: fptr(150)},
				},
			},
			{
				ID: "o3", RepresentativeID: "u2", ClinicID: "c1",
				OrderDate:   tptr(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)),
				TotalAmount: fptr(999),
			},
			{
				ID: "o4", RepresentativeID: "u1", ClinicID: "c1",
				OrderDate:   tptr(time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC)),
				TotalAmount: fptr(50),
			},
		},
		Visits: []Visit{
			{ID: "v1", RepresentativeID: "u1", ClinicID: "c1", VisitDate: tptr(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))},
			{ID: "v2", RepresentativeID: "u1", ClinicID: "c2", VisitDate: tptr(time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC))},
			{ID: "v3", RepresentativeID: "u2", ClinicID: "c2", VisitDate: tptr(time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC))},
		},
		Collections: []Collection{
			{ID: "k1", RepresentativeID: "u1", ClinicID: "c1", Amount: fptr(150), CollectionDate: tptr(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))},
		},
	}
}

func marchRange() TimeRange {
	return NewResolver(fixedClock(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))).Resolve(PeriodThisMonth, TimeRange{})
}

func TestBuildProfileThisMonth(t *testing.T) {
	p := BuildProfile(marchDataset(), ProfileOptions{ActorID: "u1", Range: marchRange(), TopN: 1})

	assert.Equal(t, 2, p.OrdersCount)
	assert.Equal(t, 2, p.VisitsCount)
	assert.Equal(t, 400.0, p.TotalSales)
	assert.Equal(t, 150.0, p.TotalCollected)
	assert.Equal(t, 250.0, p.CurrentDebt)

	require.Len(t, p.TopClinicsBySales, 1)
	assert.Equal(t, AggregatedGroup{Key: "c2", Label: "Clinic Two", Value: 300}, p.TopClinicsBySales[0])
	require.NotNil(t, p.BestClinicBySales)
	assert.Equal(t, "c2", p.BestClinicBySales.Key)

	require.NotNil(t, p.BestProductByQty)
	assert.Equal(t, "p2", p.BestProductByQty.Key)
	assert.Equal(t, 150.0, p.BestProductByQty.Value)
	require.Len(t, p.TopProductsByRevenue, 1)
	assert.Equal(t, "p2", p.TopProductsByRevenue[0].Key)

	require.NotNil(t, p.LastVisit)
	assert.Equal(t, 18, p.LastVisit.Day())
	require.NotNil(t, p.LastInvoice)
	assert.Equal(t, 20, p.LastInvoice.Day())
}

func TestBuildProfileClinicTotals(t *testing.T) {
	p := BuildProfile(marchDataset(), ProfileOptions{ActorID: "u1", Range: marchRange(), TopN: 5})
	require.Len(t, p.TopClinicsBySales, 2)
	got := map[string]float64{}
	for _, g := range p.TopClinicsBySales {
		got[g.Key] = g.Value
	}
	assert.Equal(t, map[string]float64{"c1": 100, "c2": 300}, got)
}

func TestBuildProfileMissingClinicGoesToUnknown(t *testing.T) {
	ds := marchDataset()
	ds.Orders = append(ds.Orders, Order{
		ID: "o5", RepresentativeID: "u1",
		OrderDate:   tptr(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)),
		TotalAmount: fptr(40),
	})
	p := BuildProfile(ds, ProfileOptions{ActorID: "u1", Range: marchRange(), TopN: 5})

	assert.Equal(t, 440.0, p.TotalSales)
	found := false
	for _, g := range p.TopClinicsBySales {
		if g.Key == UnknownKey {
			found = true
			assert.Equal(t, 40.0, g.Value)
		}
	}
	assert.True(t, found, "unknown clinic bucket expected")
}

func TestBuildProfileInvertedRange(t *testing.T) {
	start := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := BuildProfile(marchDataset(), ProfileOptions{ActorID: "u1", Range: TimeRange{Start: &start, End: &end}, TopN: 5})

	assert.Zero(t, p.OrdersCount)
	assert.Zero(t, p.VisitsCount)
	assert.Zero(t, p.TotalSales)
	assert.Zero(t, p.TotalCollected)
	assert.Zero(t, p.CurrentDebt)
	assert.Nil(t, p.BestClinicBySales)
	assert.Nil(t, p.BestProductByQty)
	assert.Empty(t, p.TopClinicsBySales)
	assert.Nil(t, p.LastVisit)
	assert.Nil(t, p.LastInvoice)

	f := NewFormatter(FormatConfig{Locale: "en"})
	assert.Equal(t, Placeholder, f.Date(p.LastInvoice))
}

func TestBuildProfileDebtNeverNegative(t *testing.T) {
	ds := marchDataset()
	ds.Collections = append(ds.Collections, Collection{
		RepresentativeID: "u1", Amount: fptr(1000),
		CollectionDate: tptr(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)),
	})
	p := BuildProfile(ds, ProfileOptions{ActorID: "u1", Range: marchRange(), TopN: 5})
	assert.Equal(t, 0.0, p.CurrentDebt)
}

func TestBuildProfileLeavesDatasetUntouched(t *testing.T) {
	ds := marchDataset()
	before := marchDataset()
	_ = BuildProfile(ds, ProfileOptions{ActorID: "u1", Range: marchRange(), TopN: 5})
	assert.Equal(t, before, ds)
}
