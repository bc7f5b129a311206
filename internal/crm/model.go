package crm

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownRepresentative is returned when the representative does not
	// belong to the caller's tenant.
	ErrUnknownRepresentative = errors.New("crm: unknown representative")
	// ErrDuplicateRequest is returned when an Idempotency-Key was already used.
	ErrDuplicateRequest = errors.New("crm: duplicate request")
	// ErrEmptyOrder is returned when an order has neither a total nor items.
	ErrEmptyOrder = errors.New("crm: order needs a total or at least one item")
)

// Module names recorded alongside idempotency keys and audit entries.
const (
	ModuleVisits      = "crm.visits"
	ModuleOrders      = "crm.orders"
	ModuleCollections = "crm.collections"
)

// VisitInput is the body of POST /crm/visits.
type VisitInput struct {
	RepresentativeID string     `json:"representativeId" validate:"omitempty,max=64"`
	ClinicID         string     `json:"clinicId" validate:"omitempty,max=64"`
	VisitDate        *time.Time `json:"visitDate"`
	Notes            string     `json:"notes" validate:"max=2000"`
}

// OrderItemInput is one product line of an order.
type OrderItemInput struct {
	ProductID   string  `json:"productId" validate:"omitempty,max=64"`
	ProductName string  `json:"productName" validate:"omitempty,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
}

// OrderInput is the body of POST /crm/orders. TotalAmount is computed from
// the items when omitted.
type OrderInput struct {
	RepresentativeID string           `json:"representativeId" validate:"omitempty,max=64"`
	ClinicID         string           `json:"clinicId" validate:"omitempty,max=64"`
	OrderDate        *time.Time       `json:"orderDate"`
	TotalAmount      *float64         `json:"totalAmount" validate:"omitempty,gte=0"`
	Items            []OrderItemInput `json:"items" validate:"max=200,dive"`
}

// CollectionInput is the body of POST /crm/collections.
type CollectionInput struct {
	RepresentativeID string     `json:"representativeId" validate:"omitempty,max=64"`
	ClinicID         string     `json:"clinicId" validate:"omitempty,max=64"`
	CollectionDate   *time.Time `json:"collectionDate"`
	Amount           float64    `json:"amount" validate:"gt=0"`
	Reference        string     `json:"reference" validate:"max=120"`
}

// Visit is a stored visit row.
type Visit struct {
	ID               string    `json:"id"`
	TenantID         int64     `json:"tenantId"`
	RepresentativeID string    `json:"representativeId"`
	ClinicID         string    `json:"clinicId,omitempty"`
	VisitDate        time.Time `json:"visitDate"`
	Notes            string    `json:"notes,omitempty"`
}

// OrderItem is a stored order line.
type OrderItem struct {
	LineNo      int             `json:"lineNo"`
	ProductID   string          `json:"productId,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Order is a stored order with its lines.
type Order struct {
	ID               string          `json:"id"`
	TenantID         int64           `json:"tenantId"`
	RepresentativeID string          `json:"representativeId"`
	ClinicID         string          `json:"clinicId,omitempty"`
	OrderDate        time.Time       `json:"orderDate"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Items            []OrderItem     `json:"items"`
}

// Collection is a stored collection row.
type Collection struct {
	ID               string          `json:"id"`
	TenantID         int64           `json:"tenantId"`
	RepresentativeID string          `json:"representativeId"`
	ClinicID         string          `json:"clinicId,omitempty"`
	CollectionDate   time.Time       `json:"collectionDate"`
	Amount           decimal.Decimal `json:"amount"`
	Reference        string          `json:"reference,omitempty"`
}

// money rounds a float amount to two decimals.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// quantity keeps the three decimals order_items.quantity stores.
func quantity(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(3)
}

// orderTotal sums price times quantity over the items.
func orderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(item.Quantity))
	}
	return total.Round(2)
}
