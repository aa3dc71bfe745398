package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alharthy/oudshop-backend/internal/images"
	"github.com/alharthy/oudshop-backend/internal/pricing"
	"github.com/alharthy/oudshop-backend/internal/products"
	"github.com/alharthy/oudshop-backend/internal/reviews"
)

// ImageService is the hosted-image collaborator.
type ImageService interface {
	Upload(ctx context.Context, encoded []string, folder string) ([]string, error)
	Destroy(ctx context.Context, publicID string) error
}

type ProductsHandler struct {
	Repo    *products.Store
	Reviews *reviews.Store
	Images  ImageService
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/create-product", h.create)
		r.Post("/uploadImages", h.uploadImages)
		r.Get("/", h.list)
		r.Get("/related/{id}", h.related)
		r.Get("/{id}", h.get)
		r.Patch("/update-product/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type productReq struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"` // rial
	OldPrice    *float64 `json:"old_price"`
	Images      []string `json:"images"`
	Author      string   `json:"author"`
	SizeML      *int     `json:"size_ml"`
	InStock     *bool    `json:"in_stock"`
	Stock       *int     `json:"stock"`
}

func (p *productReq) validate() string {
	if p.Name == "" || p.Category == "" || p.Description == "" || p.Price == nil || len(p.Images) == 0 || p.Author == "" {
		return "all required fields must be provided"
	}
	if *p.Price < 0 {
		return "invalid price"
	}
	if p.OldPrice != nil && *p.OldPrice < 0 {
		return "invalid old price"
	}
	if p.Stock != nil && *p.Stock < 0 {
		return "invalid stock quantity"
	}
	if p.Category == pricing.CategoryHennaPowder && p.SizeML == nil {
		return "henna size must be provided"
	}
	return ""
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := products.Product{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		PriceBaisa:  pricing.Baisa(*req.Price),
		Images:      req.Images,
		Author:      req.Author,
		SizeML:      req.SizeML,
		InStock:     true,
	}
	if req.OldPrice != nil {
		old := pricing.Baisa(*req.OldPrice)
		p.OldPriceBaisa = &old
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	} else if p.Stock == 0 && req.Stock != nil {
		p.InStock = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Create(ctx, &p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) uploadImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Images []string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, "an array of images is required")
		return
	}

	urls, err := h.Images.Upload(r.Context(), req.Images, "products")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to upload images")
		return
	}
	writeJSON(w, http.StatusOK, urls)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := products.Filter{Category: q.Get("category")}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.SizeML = &n
		}
	}
	minStr, maxStr := q.Get("min_price"), q.Get("max_price")
	if minStr != "" && maxStr != "" {
		minP, errMin := strconv.ParseFloat(minStr, 64)
		maxP, errMax := strconv.ParseFloat(maxStr, 64)
		if errMin == nil && errMax == nil {
			lo, hi := pricing.Baisa(minP), pricing.Baisa(maxP)
			f.MinBaisa, f.MaxBaisa = &lo, &hi
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, total, err := h.Repo.List(ctx, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch products")
		return
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":       list,
		"total_products": total,
		"total_pages":    (total + limit - 1) / limit,
	})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	p, err := h.Repo.FindByID(ctx, id)
	if err != nil {
		productError(w, err)
		return
	}
	revs, err := h.Reviews.FindByProduct(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p, "reviews": revs})
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		productReq
		KeepImages []string `json:"keep_images"`
		NewImages  []string `json:"new_images"` // base64/data-URL
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	p, err := h.Repo.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		productError(w, err)
		return
	}

	if req.Name == "" || req.Category == "" || req.Description == "" || req.Price == nil {
		writeError(w, http.StatusBadRequest, "all required fields must be provided")
		return
	}
	if req.Category == pricing.CategoryHennaPowder && req.SizeML == nil {
		writeError(w, http.StatusBadRequest, "henna size must be provided")
		return
	}

	p.Name = req.Name
	p.Category = req.Category
	p.Description = req.Description
	p.PriceBaisa = pricing.Baisa(*req.Price)
	p.SizeML = req.SizeML
	if req.Author != "" {
		p.Author = req.Author
	}
	p.OldPriceBaisa = nil
	if req.OldPrice != nil {
		old := pricing.Baisa(*req.OldPrice)
		p.OldPriceBaisa = &old
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			writeError(w, http.StatusBadRequest, "invalid stock quantity")
			return
		}
		p.Stock = *req.Stock
		if req.InStock == nil && p.Stock == 0 {
			p.InStock = false
		}
	}

	var uploaded []string
	if len(req.NewImages) > 0 {
		uploaded, err = h.Images.Upload(ctx, req.NewImages, "products")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to upload images")
			return
		}
	}
	if len(req.KeepImages) > 0 || len(uploaded) > 0 {
		p.Images = append(req.KeepImages, uploaded...)
	}

	if err := h.Repo.Update(ctx, p); err != nil {
		productError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "product updated", "product": p})
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	p, err := h.Repo.FindByID(ctx, id)
	if err != nil {
		productError(w, err)
		return
	}

	// hosted images go best-effort; the product row is authoritative
	for _, url := range p.Images {
		publicID := images.PublicIDFromURL(url)
		if publicID == "" {
			continue
		}
		if err := h.Images.Destroy(ctx, publicID); err != nil {
			log.Printf("image destroy failed: %s: %v", publicID, err)
		}
	}

	if err := h.Repo.Delete(ctx, id); err != nil {
		productError(w, err)
		return
	}
	if err := h.Reviews.DeleteByProduct(ctx, id); err != nil {
		log.Printf("review purge failed for product %s: %v", id, err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductsHandler) related(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.Related(ctx, chi.URLParam(r, "id"))
	if err != nil {
		productError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func productError(w http.ResponseWriter, err error) {
	if errors.Is(err, products.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
