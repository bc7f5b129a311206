package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{DimensionID: "c1", DimensionLabel: "Clinic One", Amount: 100},
		{DimensionID: "c2", DimensionLabel: "Clinic Two", Amount: 300},
		{DimensionID: "c1", DimensionLabel: "Renamed", Amount: 50},
		{DimensionID: "", Amount: 25},
	}
}

func TestAggregateSumsByKey(t *testing.T) {
	groups := Aggregate(sampleRecords(), RecordDimension, RecordLabel, SumAmount)
	require.Equal(t, 3, groups.Len())

	c1, ok := groups.Get("c1")
	require.True(t, ok)
	assert.Equal(t, 150.0, c1.Value)
	assert.Equal(t, "Clinic One", c1.Label, "first label wins")

	unknown, ok := groups.Get(UnknownKey)
	require.True(t, ok)
	assert.Equal(t, 25.0, unknown.Value)
	assert.Equal(t, UnknownKey, unknown.Label)

	keys := []string{}
	for _, g := range groups.Slice() {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"c1", "c2", UnknownKey}, keys)
}

func TestAggregateIsIdempotent(t *testing.T) {
	records := sampleRecords()
	first := Aggregate(records, RecordDimension, RecordLabel, SumAmount)
	second := Aggregate(records, RecordDimension, RecordLabel, SumAmount)
	assert.Equal(t, first.Slice(), second.Slice())
}

func TestAggregateConservesSum(t *testing.T) {
	records := sampleRecords()
	var want float64
	for _, r := range records {
		want += r.Amount
	}
	groups := Aggregate(records, RecordDimension, RecordLabel, SumAmount)
	assert.InDelta(t, want, groups.Total(), 1e-9)
}

func TestAggregateCountAndLines(t *testing.T) {
	counts := Aggregate(sampleRecords(), RecordDimension, RecordLabel, CountOne)
	c1, _ := counts.Get("c1")
	assert.Equal(t, 2.0, c1.Value)

	lines := []LineItem{
		{DimensionID: "p1", Label: "Amoxil", UnitPrice: 10, Quantity: 2},
		{DimensionID: "p1", Label: "Amoxil", UnitPrice: 12, Quantity: 1},
		{DimensionID: "p2", Label: "Panadol", UnitPrice: 3, Quantity: 10},
	}
	revenue := Aggregate(lines, LineDimension, LineLabel, LineRevenue)
	qty := Aggregate(lines, LineDimension, LineLabel, LineQuantity)
	p1, _ := revenue.Get("p1")
	assert.Equal(t, 32.0, p1.Value)
	p2, _ := qty.Get("p2")
	assert.Equal(t, 10.0, p2.Value)
}

func TestGroupsNilSafe(t *testing.T) {
	var g *Groups
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0.0, g.Total())
	assert.Empty(t, g.Slice())
	_, ok := g.Get("x")
	assert.False(t, ok)
}

func TestAggregateEmpty(t *testing.T) {
	groups := Aggregate([]Record{}, RecordDimension, RecordLabel, SumAmount)
	assert.Equal(t, 0, groups.Len())
}
