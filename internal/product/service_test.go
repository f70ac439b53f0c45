package product_test

import (
	"context"
	"testing"

	"github.com/ekeyboard/backend/internal/product"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProductRepository struct {
	createFunc  func(ctx context.Context, p *product.Product) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*product.Product, error)
	listFunc    func(ctx context.Context) ([]product.Product, error)
	updateFunc  func(ctx context.Context, p *product.Product) error
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
	likeFunc    func(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

func (m *mockProductRepository) Create(ctx context.Context, p *product.Product) error {
	return m.createFunc(ctx, p)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductRepository) List(ctx context.Context) ([]product.Product, error) {
	return m.listFunc(ctx)
}

func (m *mockProductRepository) Update(ctx context.Context, p *product.Product) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockProductRepository) Like(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return m.likeFunc(ctx, id)
}

func TestProductService_Create_Validation(t *testing.T) {
	categoryRef := uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true}

	tests := []struct {
		name    string
		product product.Product
	}{
		{
			name:    "missing_name",
			product: product.Product{Price: decimal.NewFromInt(10), Stock: 1, CategoryID: categoryRef, Images: []string{"https://img/1.png"}},
		},
		{
			name:    "negative_price",
			product: product.Product{Name: "Kb", Price: decimal.NewFromInt(-1), Stock: 1, CategoryID: categoryRef, Images: []string{"https://img/1.png"}},
		},
		{
			name:    "negative_stock",
			product: product.Product{Name: "Kb", Price: decimal.NewFromInt(10), Stock: -1, CategoryID: categoryRef, Images: []string{"https://img/1.png"}},
		},
		{
			name:    "no_images",
			product: product.Product{Name: "Kb", Price: decimal.NewFromInt(10), Stock: 1, CategoryID: categoryRef},
		},
		{
			name:    "missing_category",
			product: product.Product{Name: "Kb", Price: decimal.NewFromInt(10), Stock: 1, Images: []string{"https://img/1.png"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepository{
				createFunc: func(ctx context.Context, p *product.Product) error {
					t.Fatal("repository must not be called on validation failure")
					return nil
				},
			}
			svc := product.NewService(repo)

			p := tt.product
			_, err := svc.Create(context.Background(), &p)
			assert.Error(t, err)
		})
	}
}

func TestProductService_Create(t *testing.T) {
	repo := &mockProductRepository{
		createFunc: func(ctx context.Context, p *product.Product) error {
			p.ID = uuid.Must(uuid.NewV4())
			return nil
		},
	}
	svc := product.NewService(repo)

	created, err := svc.Create(context.Background(), &product.Product{
		Name:       "Test Keyboard",
		Price:      decimal.NewFromInt(100),
		Stock:      5,
		Likes:      42, // must be reset; likes start at zero
		CategoryID: uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
		Images:     []string{"https://img/1.png"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 0, created.Likes)
}

func TestProductService_Create_UnknownCategory(t *testing.T) {
	repo := &mockProductRepository{
		createFunc: func(ctx context.Context, p *product.Product) error {
			return product.ErrCategoryNotFound
		},
	}
	svc := product.NewService(repo)

	_, err := svc.Create(context.Background(), &product.Product{
		Name:       "Test Keyboard",
		Price:      decimal.NewFromInt(100),
		Stock:      5,
		CategoryID: uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
		Images:     []string{"https://img/1.png"},
	})
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)
}

func TestProductService_NotFoundPassthrough(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	repo := &mockProductRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*product.Product, error) {
			return nil, product.ErrNotFound
		},
		deleteFunc: func(ctx context.Context, id uuid.UUID) error {
			return product.ErrNotFound
		},
		likeFunc: func(ctx context.Context, id uuid.UUID) (*product.Product, error) {
			return nil, product.ErrNotFound
		},
	}
	svc := product.NewService(repo)

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, product.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), product.ErrNotFound)

	_, err = svc.Like(context.Background(), id)
	assert.ErrorIs(t, err, product.ErrNotFound)
}
