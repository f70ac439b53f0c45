package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Order records one user's purchase of a quantity of one product. The user
// and product references go null if the referenced row is later deleted;
// the order itself is never removed.
type Order struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.NullUUID `json:"user_id" db:"user_id"`
	ProductID uuid.NullUUID `json:"product_id" db:"product_id"`
	Quantity  int           `json:"quantity" db:"quantity"`
	Status    Status        `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// AdminView is an order enriched with the buyer's non-secret profile fields
// and the product's name and price, for the admin listing.
type AdminView struct {
	OrderID      uuid.UUID       `json:"order_id"`
	Quantity     int             `json:"quantity"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UserID       uuid.UUID       `json:"user_id"`
	UserFullName string          `json:"user_full_name"`
	UserEmail    string          `json:"user_email"`
	UserPhone    string          `json:"user_phone"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
}

// HistoryEntry is one row of a user's own order history. Product fields are
// empty when the product has since been deleted.
type HistoryEntry struct {
	OrderID     uuid.UUID       `json:"order_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_date"`
}
