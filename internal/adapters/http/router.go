package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/saehwan/assetledger/internal/application"
	"github.com/saehwan/assetledger/internal/domain"
)

type Handler struct {
	service *application.LedgerService
}

func NewRouter(service *application.LedgerService) http.Handler {
	h := &Handler{service: service}
	r := chi.NewRouter()

	r.Route("/api", func(api chi.Router) {
		api.Get("/assets", h.handleAPIListAssets)
		api.Get("/assets/{id}", h.handleAPIGetAsset)
		api.Get("/assets/{id}/timeline", h.handleAPIListTimeline)
		api.Post("/assets/{id}/issue", h.handleAPIIssueAsset)
		api.Post("/assets/{id}/return", h.handleAPIReturnAsset)
		api.Post("/assets/{id}/dispose", h.handleAPIDisposeAsset)

		api.Post("/receive", h.handleAPIReceive)

		api.Get("/pos", h.handleAPIListPOs)
		api.Post("/pos", h.handleAPICreatePO)
		api.Get("/pos/{id}", h.handleAPIGetPO)
		api.Get("/pos/{id}/lines", h.handleAPIListPOLines)
		api.Post("/pos/{id}/lines", h.handleAPIAddPOLine)

		api.Get("/masters/users", h.handleAPIListUsers)
		api.Post("/masters/users", h.handleAPICreateUser)
		api.Get("/masters/locations", h.handleAPIListLocations)
		api.Post("/masters/locations", h.handleAPICreateLocation)
	})

	return r
}

func urlID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, domain.Validationf("invalid id %q", raw)
	}
	return uint(id), nil
}

func (h *Handler) handleAPIListAssets(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleAPIGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAPIListTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.service.ListTimeline(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type apiIssueRequest struct {
	ToOwnerUserID uint    `json:"to_owner_user_id"`
	PerformedBy   uint    `json:"performed_by"`
	Reason        *string `json:"reason"`
}

func (h *Handler) handleAPIIssueAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req apiIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.Issue(r.Context(), id, req.ToOwnerUserID, req.PerformedBy, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type apiReturnRequest struct {
	ToLocationID uint    `json:"to_location_id"`
	PerformedBy  uint    `json:"performed_by"`
	Reason       *string `json:"reason"`
}

func (h *Handler) handleAPIReturnAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req apiReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.Return(r.Context(), id, req.ToLocationID, req.PerformedBy, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type apiDisposeRequest struct {
	PerformedBy uint   `json:"performed_by"`
	Reason      string `json:"reason"`
}

func (h *Handler) handleAPIDisposeAsset(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req apiDisposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.Dispose(r.Context(), id, req.PerformedBy, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type apiReceiveRequest struct {
	POLineID     uint    `json:"po_line_id"`
	QtyReceived  int     `json:"qty_received"`
	LocationID   uint    `json:"location_id"`
	PerformedBy  uint    `json:"performed_by"`
	ReferenceDoc *string `json:"reference_doc"`
}

func (h *Handler) handleAPIReceive(w http.ResponseWriter, r *http.Request) {
	var req apiReceiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	items, err := h.service.Receive(r.Context(), req.POLineID, req.QtyReceived, req.LocationID, req.PerformedBy, req.ReferenceDoc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleAPIListPOs(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPurchaseOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type apiCreatePORequest struct {
	VendorName     *string   `json:"vendor_name"`
	PONumber       *string   `json:"po_number"`
	RequestedByID  uint      `json:"requested_by_id"`
	PurchasedAt    time.Time `json:"purchased_at"`
	PurchaseReason string    `json:"purchase_reason"`
	CostCenter     *string   `json:"cost_center"`
}

func (h *Handler) handleAPICreatePO(w http.ResponseWriter, r *http.Request) {
	var req apiCreatePORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreatePurchaseOrder(r.Context(), domain.PurchaseOrder{
		VendorName:     req.VendorName,
		PONumber:       req.PONumber,
		RequestedByID:  req.RequestedByID,
		PurchasedAt:    req.PurchasedAt,
		PurchaseReason: req.PurchaseReason,
		CostCenter:     req.CostCenter,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAPIGetPO(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAPIListPOLines(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.service.ListPurchaseOrderLines(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type apiAddPOLineRequest struct {
	ItemCategory string   `json:"item_category"`
	ModelName    *string  `json:"model_name"`
	Description  *string  `json:"description"`
	QtyOrdered   int      `json:"qty_ordered"`
	UnitPrice    *float64 `json:"unit_price"`
}

func (h *Handler) handleAPIAddPOLine(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req apiAddPOLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.AddPurchaseOrderLine(r.Context(), domain.PurchaseOrderLine{
		POID:         id,
		ItemCategory: req.ItemCategory,
		ModelName:    req.ModelName,
		Description:  req.Description,
		QtyOrdered:   req.QtyOrdered,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAPIListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type apiCreateUserRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (h *Handler) handleAPICreateUser(w http.ResponseWriter, r *http.Request) {
	var req apiCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateUser(r.Context(), req.DisplayName, domain.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAPIListLocations(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type apiCreateLocationRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleAPICreateLocation(w http.ResponseWriter, r *http.Request) {
	var req apiCreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateLocation(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// writeError maps the service error kinds onto HTTP statuses: missing
// entities are 404, illegal transitions 409, bad input 400, the rest 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
