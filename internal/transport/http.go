package transport

import (
	"net/http"

	"github.com/ekeyboard/backend/internal/auth"
	"github.com/ekeyboard/backend/internal/category"
	"github.com/ekeyboard/backend/internal/dashboard"
	handler "github.com/ekeyboard/backend/internal/handler/http"
	"github.com/ekeyboard/backend/internal/order"
	"github.com/ekeyboard/backend/internal/product"
	"github.com/ekeyboard/backend/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRouter(pool *pgxpool.Pool, tokens *auth.TokenManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	userSvc := user.NewService(user.NewRepository(pool))
	categorySvc := category.NewService(category.NewRepository(pool))
	productSvc := product.NewService(product.NewRepository(pool))
	orderSvc := order.NewService(order.NewRepository(pool))
	dashboardSvc := dashboard.NewService(dashboard.NewRepository(pool))

	authenticate := tokens.Authenticate

	handler.NewAuthHandler(userSvc, tokens).RegisterRoutes(r, authenticate)
	handler.NewCategoryHandler(categorySvc).RegisterRoutes(r, authenticate)
	handler.NewProductHandler(productSvc).RegisterRoutes(r, authenticate)
	handler.NewOrderHandler(orderSvc).RegisterRoutes(r, authenticate)
	handler.NewDashboardHandler(dashboardSvc).RegisterRoutes(r, authenticate)

	return r
}
