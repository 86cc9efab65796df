package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jmoralesv/go-storefront/app/auth"
	"github.com/jmoralesv/go-storefront/models"
)

type OrderLine struct {
	ProductSlug string     `json:"product_slug"`
	ProductName string     `json:"product_name"`
	UnitPrice   float64    `json:"unit_price"`
	Quantity    int        `json:"quantity"`
	LineTotal   float64    `json:"line_total"`
	OrderedAt   *time.Time `json:"ordered_at"`
}

type Response struct {
	Orders []OrderLine `json:"orders"`
	Total  float64     `json:"total"`
}

type OrderProvider interface {
	Checkout(userID string) error
	ListOrders(userID string) ([]models.OrderLine, error)
}

type OrdersHandler struct {
	repo OrderProvider
}

func NewOrdersHandler(r OrderProvider) *OrdersHandler {
	return &OrdersHandler{repo: r}
}

// HandleCheckout finalizes the current user's cart. Insufficient stock for
// any line rejects the whole checkout and nothing changes.
func (h *OrdersHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.repo.Checkout(userID); err != nil {
		var stockErr *models.InsufficientStockError
		if errors.As(err, &stockErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{
				"error":        stockErr.Error(),
				"product_slug": stockErr.ProductSlug,
				"requested":    stockErr.Requested,
				"available":    stockErr.Available,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Checkout failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Checkout complete"})
}

// HandleList returns the user's purchase history with its running total.
func (h *OrdersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	lines, err := h.repo.ListOrders(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	orders := make([]OrderLine, len(lines))
	for i, l := range lines {
		orders[i] = OrderLine{
			ProductSlug: l.Product.Slug,
			ProductName: l.Product.Name,
			UnitPrice:   l.Product.Price.InexactFloat64(),
			Quantity:    l.Quantity,
			LineTotal:   l.TotalPrice().InexactFloat64(),
			OrderedAt:   l.OrderedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	response := Response{
		Orders: orders,
		Total:  models.LinesTotal(lines).InexactFloat64(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
