package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

func TestAmountOrZero(t *testing.T) {
	assert.Equal(t, 0.0, AmountOrZero())
	assert.Equal(t, 0.0, AmountOrZero(nil, nil))
	assert.Equal(t, 40.0, AmountOrZero(nil, fptr(40)))
	assert.Equal(t, 40.0, AmountOrZero(fptr(0), fptr(40)))
	assert.Equal(t, 12.5, AmountOrZero(fptr(12.5), fptr(40)))
}

func TestOrderRecordAmountFallbacks(t *testing.T) {
	withTotalAmount := OrderRecord(Order{TotalAmount: fptr(100), Total: fptr(90)})
	assert.Equal(t, 100.0, withTotalAmount.Amount)

	withTotal := OrderRecord(Order{Total: fptr(90)})
	assert.Equal(t, 90.0, withTotal.Amount)

	fromLines := OrderRecord(Order{Items: []OrderItem{
		{ProductID: "p1", Price: fptr(10), Quantity: fptr(3)},
		{ProductID: "p2", Price: fptr(5), Quantity: nil},
	}})
	assert.Equal(t, 30.0, fromLines.Amount)

	none := OrderRecord(Order{})
	assert.Equal(t, 0.0, none.Amount)
	assert.Equal(t, UnknownKey, none.DimensionID)
	assert.True(t, none.OccurredAt.IsZero())
}

func TestOrderRecordLineKeys(t *testing.T) {
	rec := OrderRecord(Order{
		RepresentativeID: "u1",
		OrderDate:        tptr(time.Date(2024, 3, 5, 9, 0, 0, 0, time.FixedZone("AST", 3*3600))),
		ClinicID:         " c1 ",
		ClinicName:       "Clinic One",
		Items: []OrderItem{
			{ProductID: "p1", ProductName: "Amoxil", Price: fptr(2), Quantity: fptr(4)},
			{ProductName: " Panadol ", Price: fptr(1), Quantity: fptr(1)},
			{Price: fptr(1), Quantity: fptr(1)},
		},
	})
	assert.Equal(t, "u1", rec.ActorID)
	assert.Equal(t, "c1", rec.DimensionID)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
	assert.Equal(t, 6, rec.OccurredAt.Hour())

	keys := []string{rec.LineItems[0].DimensionID, rec.LineItems[1].DimensionID, rec.LineItems[2].DimensionID}
	assert.Equal(t, []string{"p1", "Panadol", UnknownKey}, keys)
}

func TestVisitAndCollectionRecords(t *testing.T) {
	visits := VisitRecords([]Visit{{RepresentativeID: "u1", ClinicID: "c1", VisitDate: tptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))}})
	assert.Len(t, visits, 1)
	assert.Equal(t, 0.0, visits[0].Amount)

	collections := CollectionRecords([]Collection{{RepresentativeID: "u1", Amount: fptr(75)}})
	assert.Equal(t, 75.0, collections[0].Amount)
	assert.Equal(t, UnknownKey, collections[0].DimensionID)
}

func TestLineItemsOf(t *testing.T) {
	records := []Record{
		{LineItems: []LineItem{{DimensionID: "a"}}},
		{},
		{LineItems: []LineItem{{DimensionID: "b"}, {DimensionID: "c"}}},
	}
	lines := LineItemsOf(records)
	assert.Len(t, lines, 3)
	assert.Equal(t, "c", lines[2].DimensionID)
}
