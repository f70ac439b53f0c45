package dashboard

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type TopSellingProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Likes     int             `json:"likes"`
	TotalSold int             `json:"total_sold"`
}

type RecentOrder struct {
	OrderID      uuid.UUID       `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	ProductName  string          `json:"product_name"`
	OrderPrice   decimal.Decimal `json:"order_price"`
	OrderStatus  string          `json:"order_status"`
	OrderDate    time.Time       `json:"order_date"`
}

type Summary struct {
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
}
