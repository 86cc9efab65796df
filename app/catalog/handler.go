package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jmoralesv/go-storefront/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Product struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Category    Category `json:"category"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetBySlug(slug string) (*models.Product, error)
}

type CategoryProvider interface {
	GetBySlug(slug string) (*models.Category, error)
}

type CatalogHandler struct {
	repo       ProductProvider
	categories CategoryProvider
}

func NewCatalogHandler(r ProductProvider, c CategoryProvider) *CatalogHandler {
	return &CatalogHandler{
		repo:       r,
		categories: c,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)

	// Parse filters
	categorySlug := r.URL.Query().Get("category")

	var priceFilter *float64
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	filters := models.ProductFilters{
		CategorySlug:  categorySlug,
		PriceLessThan: priceFilter,
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	response := Response{
		Total:    int(total),
		Products: mapProducts(res),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	product, err := h.repo.GetBySlug(slug)
	if err != nil {
		if err == models.ErrProductNotFound {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(mapProduct(*product)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// HandleGetCategory renders a category page: the category itself plus its
// active products, paginated like the main listing.
func (h *CatalogHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	category, err := h.categories.GetBySlug(slug)
	if err != nil {
		if err == models.ErrCategoryNotFound {
			writeError(w, http.StatusNotFound, "Category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}

	offset, limit := parsePagination(r)
	res, total, err := h.repo.GetFilteredProducts(offset, limit, models.ProductFilters{CategorySlug: slug})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	response := struct {
		Category Category  `json:"category"`
		Total    int       `json:"total"`
		Products []Product `json:"products"`
	}{
		Category: Category{Slug: category.Slug, Name: category.Name},
		Total:    int(total),
		Products: mapProducts(res),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parsePagination(r *http.Request) (offset, limit int) {
	offset = 0
	limit = 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	return offset, limit
}

func mapProducts(res []models.Product) []Product {
	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = mapProduct(p)
	}
	return products
}

func mapProduct(p models.Product) Product {
	return Product{
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Category: Category{
			Slug: p.Category.Slug,
			Name: p.Category.Name,
		},
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
