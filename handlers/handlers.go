package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"coinwatch/models"
	"coinwatch/repository"
	"coinwatch/scheduler"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handlers struct {
	repo      *repository.ProductRepository
	driver    *scheduler.Driver
	scheduler *scheduler.Scheduler
}

func NewHandlers(repo *repository.ProductRepository, driver *scheduler.Driver, sched *scheduler.Scheduler) *Handlers {
	return &Handlers{repo: repo, driver: driver, scheduler: sched}
}

// GetProducts lists all products. No auth: the comparison data is public.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetProducts()
	if err != nil {
		log.Errorf("Failed to list products: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct returns one product by key.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	product, err := h.repo.GetProduct(key)
	if err != nil {
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Errorf("Failed to get product %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// GetPriceHistory returns recent best-price points for a product.
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.repo.GetPriceHistory(key, limit)
	if err != nil {
		log.Errorf("Failed to get history for %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to get price history")
		return
	}
	if history == nil {
		history = []models.PriceHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}

// AddProduct creates a product; the key is slugified from the name unless
// supplied explicitly.
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	key := req.Key
	if key == "" {
		key = models.SlugifyKey(req.Name)
	}
	if key == "" {
		writeError(w, http.StatusBadRequest, "could not derive a key from name")
		return
	}

	product, err := h.repo.CreateProduct(key, req.Name, req.OwnURL, req.ImageURL)
	if err != nil {
		log.Errorf("Failed to create product %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// AddSiteURL registers one site URL on a product.
func (h *Handlers) AddSiteURL(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req models.AddSiteURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Site == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "site and url are required")
		return
	}

	product, err := h.repo.GetProduct(key)
	if err != nil {
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	product.SiteURLs[req.Site] = req.URL
	if err := h.repo.SaveSiteURLs(key, product.SiteURLs); err != nil {
		log.Errorf("Failed to save site URLs for %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to save site URL")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteSiteURL unregisters a site from a product. Any stored observation
// for the site is kept but excluded from future reconciliations.
func (h *Handlers) DeleteSiteURL(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key, site := vars["key"], vars["site"]

	product, err := h.repo.GetProduct(key)
	if err != nil {
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	if _, ok := product.SiteURLs[site]; !ok {
		writeError(w, http.StatusNotFound, "site not registered on product")
		return
	}

	delete(product.SiteURLs, site)
	if err := h.repo.SaveSiteURLs(key, product.SiteURLs); err != nil {
		log.Errorf("Failed to save site URLs for %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to save site URLs")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// SetEnabled toggles scheduled-run participation for a product.
func (h *Handlers) SetEnabled(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.SetEnabled(key, req.Enabled); err != nil {
		log.Errorf("Failed to set enabled for %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"key": key, "enabled": req.Enabled})
}

// DeleteProduct removes a product and its history.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := h.repo.DeleteProduct(key); err != nil {
		log.Errorf("Failed to delete product %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": key})
}

// UpdatePrices runs one product's reconciliation inline and returns the
// full comparison, including the per-site attempt log so an operator can
// see which site broke and why instead of a bare boolean.
func (h *Handlers) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	ctx := r.Context()
	result, err := h.driver.RunOne(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Errorf("Manual update failed for %s: %v", key, err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    !result.Failed,
		"comparison": result,
	})
}

// TriggerUpdate enqueues a full batch run for the scheduler loop rather
// than running it inline.
func (h *Handlers) TriggerUpdate(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"triggered": true,
		"timestamp": time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
