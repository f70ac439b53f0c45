package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	TopSelling(ctx context.Context, limit int) ([]TopSellingProduct, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	Summary(ctx context.Context) (*Summary, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) TopSelling(ctx context.Context, limit int) ([]TopSellingProduct, error) {
	query := `
		SELECT p.id, p.name, p.price, p.stock, p.likes, SUM(o.quantity) AS total_sold
		FROM orders o
		JOIN products p ON p.id = o.product_id
		GROUP BY p.id, p.name, p.price, p.stock, p.likes
		ORDER BY total_sold DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query top-selling products: %w", err)
	}
	defer rows.Close()

	products := make([]TopSellingProduct, 0)
	for rows.Next() {
		var p TopSellingProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Price, &p.Stock, &p.Likes, &p.TotalSold); err != nil {
			return nil, fmt.Errorf("repository: failed to scan top-selling product: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating top-selling products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	query := `
		SELECT o.id, u.full_name, p.name, p.price * o.quantity, o.status, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN products p ON p.id = o.product_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query recent orders: %w", err)
	}
	defer rows.Close()

	orders := make([]RecentOrder, 0)
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.OrderID, &o.CustomerName, &o.ProductName, &o.OrderPrice, &o.OrderStatus, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("repository: failed to scan recent order: %w", err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating recent orders: %w", err)
	}
	return orders, nil
}

func (r *postgresRepository) Summary(ctx context.Context) (*Summary, error) {
	var s Summary

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'user'`).Scan(&s.TotalCustomers)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to count customers: %w", err)
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&s.TotalOrders)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	// Profit is summed over completed orders only; orders whose product was
	// deleted no longer contribute a price.
	profitQuery := `
		SELECT COALESCE(SUM(p.price * o.quantity), 0)
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.status = 'completed'
	`
	err = r.db.QueryRow(ctx, profitQuery).Scan(&s.TotalProfit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to sum profit: %w", err)
	}

	return &s, nil
}
