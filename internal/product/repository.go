package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("product category not found")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Like(ctx context.Context, id uuid.UUID) (*Product, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) (err error) {
	if p.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", genErr)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", p.ID).Msg("repository: failed to rollback product insert")
			}
		}
	}()

	query := `
		INSERT INTO products (id, name, description, price, stock, likes, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Likes, p.CategoryID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isCategoryViolation(err) {
			err = ErrCategoryNotFound
			return err
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	if err = insertImages(ctx, tx, p.ID, p.Images); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit product insert: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.likes,
		       p.category_id, COALESCE(c.name, ''), p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Likes,
		&p.CategoryID, &p.CategoryName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	p.Images, err = r.imagesFor(ctx, id)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.likes,
		       p.category_id, COALESCE(c.name, ''), p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	productsMap := make(map[uuid.UUID]*Product)
	var ids []uuid.UUID

	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Likes,
			&p.CategoryID, &p.CategoryName, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		p.Images = make([]string, 0)
		productsMap[p.ID] = &p
		ids = append(ids, p.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	if len(ids) == 0 {
		return []Product{}, nil
	}

	imagesQuery := `
		SELECT product_id, image_url
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY position
	`
	imageRows, err := r.db.Query(ctx, imagesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query product images: %w", err)
	}
	defer imageRows.Close()

	for imageRows.Next() {
		var productID uuid.UUID
		var url string
		if err := imageRows.Scan(&productID, &url); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product image: %w", err)
		}
		if p, ok := productsMap[productID]; ok {
			p.Images = append(p.Images, url)
		}
	}
	if err = imageRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating product images: %w", err)
	}

	result := make([]Product, 0, len(ids))
	for _, id := range ids {
		result = append(result, *productsMap[id])
	}
	return result, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", p.ID).Msg("repository: failed to rollback product update")
			}
		}
	}()

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category_id = $5, updated_at = $6
		WHERE id = $7
	`
	cmdTag, err := tx.Exec(ctx, query, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.UpdatedAt, p.ID)
	if err != nil {
		if isCategoryViolation(err) {
			err = ErrCategoryNotFound
			return err
		}
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	// Image references are replaced wholesale on update.
	if _, err = tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("repository: failed to clear product images for %s: %w", p.ID, err)
	}
	if err = insertImages(ctx, tx, p.ID, p.Images); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit product update: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// orders.product_id is ON DELETE SET NULL, so order history survives.
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Like(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		UPDATE products
		SET likes = likes + 1, updated_at = $1
		WHERE id = $2
	`

	cmdTag, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to like product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func isCategoryViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.ForeignKeyViolation &&
		pgErr.ConstraintName == "products_category_id_fkey"
}

func (r *postgresRepository) imagesFor(ctx context.Context, productID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT image_url FROM product_images WHERE product_id = $1 ORDER BY position`, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query images for product %s: %w", productID, err)
	}
	defer rows.Close()

	images := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("repository: failed to scan image for product %s: %w", productID, err)
		}
		images = append(images, url)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating images for product %s: %w", productID, err)
	}
	return images, nil
}

func insertImages(ctx context.Context, tx pgx.Tx, productID uuid.UUID, images []string) error {
	for i, url := range images {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_images (product_id, position, image_url) VALUES ($1, $2, $3)`,
			productID, i, url)
		if err != nil {
			return fmt.Errorf("repository: failed to insert image for product %s: %w", productID, err)
		}
	}
	return nil
}
