package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock and Likes are never negative; stock is
// only ever decremented through the conditional update in the order
// repository or edited directly by catalog management.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Likes       int             `json:"likes" db:"likes"`
	// CategoryID is required on create and update but nullable in storage:
	// deleting a category sets it to NULL without touching the product.
	CategoryID   uuid.NullUUID `json:"category_id" db:"category_id"`
	CategoryName string        `json:"category_name" db:"-"`
	Images       []string      `json:"images" db:"-"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}
