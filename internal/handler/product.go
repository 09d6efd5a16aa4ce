package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"martshift/internal/apperr"
	"martshift/internal/model"
	"martshift/internal/service"
)

type ProductHandler struct {
	svc    *service.ProductService
	mw     *Middleware
	logger *zap.Logger
}

func NewProductHandler(svc *service.ProductService, mw *Middleware, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, mw: mw, logger: logger}
}

type createProductRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Price      int64  `json:"price"`
	Stock      int64  `json:"stock"`
	ExpiryDate string `json:"expiryDate"`
}

type adjustStockRequest struct {
	Quantity   int64  `json:"quantity"`
	ExpiryDate string `json:"expiryDate"`
}

// HandleCreate registers a new product. Administrator only.
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperr.Validation("error.bad_request"))
		return
	}

	product, err := h.svc.Create(r.Context(), identityFrom(r.Context()),
		req.Name, req.Category, req.Price, req.Stock, req.ExpiryDate)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// HandleList returns products filtered by ?q= (name search) and ?category=.
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Search(r.Context(),
		r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleAdjustStock increases stock when an order arrives.
func (h *ProductHandler) HandleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperr.Validation("error.bad_request"))
		return
	}

	product, err := h.svc.AdjustStock(r.Context(), r.PathValue("id"), req.Quantity, req.ExpiryDate)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// RegisterRoutes registers all product routes on the given mux.
func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/products", h.mw.RequireAuth(h.HandleCreate))
	mux.HandleFunc("GET /api/products", h.mw.RequireAuth(h.HandleList))
	mux.HandleFunc("PATCH /api/products/{id}/stock", h.mw.RequireAuth(h.HandleAdjustStock))
}
