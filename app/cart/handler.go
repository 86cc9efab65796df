package cart

import (
	"encoding/json"
	"net/http"

	"github.com/jmoralesv/go-storefront/app/auth"
	"github.com/jmoralesv/go-storefront/models"
)

type Line struct {
	ProductSlug string  `json:"product_slug"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
	Ordered     bool    `json:"ordered"`
}

type Response struct {
	Lines []Line  `json:"lines"`
	Total float64 `json:"total"`
}

type CartProvider interface {
	GetOrCreate(userID string) (*models.Cart, bool, error)
	AddToCart(userID, productSlug string) (*models.OrderLine, error)
	GetCart(userID string) (*models.Cart, error)
	ListPending(userID string) ([]models.OrderLine, error)
	ClearPending(userID string) error
}

type CartHandler struct {
	repo CartProvider
}

func NewCartHandler(r CartProvider) *CartHandler {
	return &CartHandler{repo: r}
}

// HandleCreate makes sure the current user has a cart. Responds 201 when a
// cart was created and 200 when one already existed.
func (h *CartHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	_, created, err := h.repo.GetOrCreate(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if created {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Cart created"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Cart already exists"})
}

// HandleAdd adds one unit of the product to the current user's cart.
// Adding the same product again merges into the existing pending line.
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	line, err := h.repo.AddToCart(userID, r.PathValue("slug"))
	if err != nil {
		if err == models.ErrProductNotFound {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(mapLine(*line))
}

// HandleGet renders the cart page data: every associated line plus the
// computed total. With ?pending=true only the not-yet-ordered lines are
// returned, totalled over just those.
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if r.URL.Query().Get("pending") == "true" {
		pending, err := h.repo.ListPending(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch cart")
			return
		}
		writeLines(w, pending)
		return
	}

	c, err := h.repo.GetCart(userID)
	if err != nil {
		if err == models.ErrCartNotFound {
			writeError(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	writeLines(w, c.Lines)
}

// HandleClear empties the pending part of the cart. Purchase history lines
// are not touched.
func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.repo.ClearPending(userID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Cart cleared"})
}

func writeLines(w http.ResponseWriter, src []models.OrderLine) {
	lines := make([]Line, len(src))
	for i, l := range src {
		lines[i] = mapLine(l)
	}

	w.Header().Set("Content-Type", "application/json")
	response := Response{
		Lines: lines,
		Total: models.LinesTotal(src).InexactFloat64(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func mapLine(l models.OrderLine) Line {
	return Line{
		ProductSlug: l.Product.Slug,
		ProductName: l.Product.Name,
		UnitPrice:   l.Product.Price.InexactFloat64(),
		Quantity:    l.Quantity,
		LineTotal:   l.TotalPrice().InexactFloat64(),
		Ordered:     l.Ordered,
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
