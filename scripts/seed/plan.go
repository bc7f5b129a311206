package main

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/repdesk/repdesk/internal/crm"
)

type planSize struct {
	Representatives int
	Clinics         int
	Days            int
}

type seedRep struct {
	ID     string
	Name   string
	Email  string
	Region string
}

type seedClinic struct {
	ID   string
	Name string
}

type seedVisit struct {
	RepresentativeID string
	Input            crm.VisitInput
}

type seedOrder struct {
	RepresentativeID string
	Input            crm.OrderInput
}

type seedCollection struct {
	RepresentativeID string
	Input            crm.CollectionInput
}

type seedPlan struct {
	Representatives []seedRep
	Clinics         []seedClinic
	Visits          []seedVisit
	Orders          []seedOrder
	Collections     []seedCollection
}

var seedProducts = []struct{ id, name string }{
	{"p-amox", "Amoxicillin 500mg"},
	{"p-para", "Paracetamol 1g"},
	{"p-ibu", "Ibuprofen 400mg"},
	{"p-ome", "Omeprazole 20mg"},
	{"p-met", "Metformin 850mg"},
}

// buildPlan draws a deterministic dataset from f. Every order is billed and
// partly collected so reports show a debt.
func buildPlan(f *gofakeit.Faker, size planSize, now time.Time) seedPlan {
	var plan seedPlan
	for i := 1; i <= size.Representatives; i++ {
		plan.Representatives = append(plan.Representatives, seedRep{
			ID:     fmt.Sprintf("rep-%02d", i),
			Name:   f.Name(),
			Email:  fmt.Sprintf("rep%02d@repdesk.local", i),
			Region: f.City(),
		})
	}
	for i := 1; i <= size.Clinics; i++ {
		plan.Clinics = append(plan.Clinics, seedClinic{
			ID:   fmt.Sprintf("clinic-%02d", i),
			Name: f.LastName() + " Clinic",
		})
	}
	if len(plan.Clinics) == 0 {
		return plan
	}

	start := now.AddDate(0, 0, -size.Days)
	for _, rep := range plan.Representatives {
		for v := f.IntRange(10, 25); v > 0; v-- {
			clinic := plan.Clinics[f.IntRange(0, len(plan.Clinics)-1)]
			date := f.DateRange(start, now).UTC()
			plan.Visits = append(plan.Visits, seedVisit{
				RepresentativeID: rep.ID,
				Input:            crm.VisitInput{ClinicID: clinic.ID, VisitDate: &date},
			})
			if !f.Bool() {
				continue
			}
			items := make([]crm.OrderItemInput, 0, 3)
			total := 0.0
			for n := f.IntRange(1, 3); n > 0; n-- {
				product := seedProducts[f.IntRange(0, len(seedProducts)-1)]
				item := crm.OrderItemInput{
					ProductID:   product.id,
					ProductName: product.name,
					Price:       float64(f.IntRange(5, 120)),
					Quantity:    float64(f.IntRange(1, 40)),
				}
				total += item.Price * item.Quantity
				items = append(items, item)
			}
			orderDate := date
			plan.Orders = append(plan.Orders, seedOrder{
				RepresentativeID: rep.ID,
				Input:            crm.OrderInput{ClinicID: clinic.ID, OrderDate: &orderDate, Items: items},
			})
			paid := float64(int(total * float64(f.IntRange(30, 100)) / 100))
			if paid <= 0 {
				continue
			}
			collectedOn := date.AddDate(0, 0, f.IntRange(1, 20))
			if collectedOn.After(now) {
				collectedOn = now
			}
			plan.Collections = append(plan.Collections, seedCollection{
				RepresentativeID: rep.ID,
				Input: crm.CollectionInput{
					ClinicID:       clinic.ID,
					CollectionDate: &collectedOn,
					Amount:         paid,
					Reference:      f.LetterN(8),
				},
			})
		}
	}
	return plan
}
