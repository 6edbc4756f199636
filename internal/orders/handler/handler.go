package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"daviz/internal/orders/models"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/httputil"
	"daviz/pkg/platform/middleware/auth"
	request "daviz/pkg/platform/middleware/request"
	liststr "daviz/pkg/platform/strings"
	"daviz/pkg/requestcontext"
)

// Service defines the order operations the HTTP layer needs.
type Service interface {
	CreateOrder(ctx context.Context, buyer address.Address, req *models.CreateOrderRequest) (*models.InterestOrder, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.InterestOrder, error)
	ListAll(ctx context.Context, filter models.Filter) ([]*models.InterestOrder, error)
	UpdateStatus(ctx context.Context, signer address.Address, id uuid.UUID, next models.Status) (*models.InterestOrder, error)
}

type Handler struct {
	orders   Service
	verifier auth.SignerVerifier
	logger   *slog.Logger
}

func New(orders Service, verifier auth.SignerVerifier, logger *slog.Logger) *Handler {
	return &Handler{orders: orders, verifier: verifier, logger: logger}
}

// Register mounts the order routes on r. Listing is public; placing and
// moving orders require a signer.
func (h *Handler) Register(r chi.Router) {
	r.Get("/orders", h.handleList)
	r.Get("/orders/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSigner(h.verifier, h.logger))
		r.Post("/orders", h.handleCreate)
		r.Patch("/orders/{id}", h.handleUpdateStatus)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateOrderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	buyer, _ := requestcontext.Signer(ctx)
	order, err := h.orders.CreateOrder(ctx, buyer, &req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	orders, err := h.orders.ListAll(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if orders == nil {
		orders = []*models.InterestOrder{}
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var req models.UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	signer, _ := requestcontext.Signer(ctx)
	order, err := h.orders.UpdateStatus(ctx, signer, id, req.Status)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if de, ok := dErrors.As(err); !ok || de.Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "order request failed",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.NewValidation("id", dErrors.ReasonInvalidVariant, "order id must be a UUID")
	}
	return id, nil
}

func parseFilter(r *http.Request) (models.Filter, error) {
	var f models.Filter
	q := r.URL.Query()
	for _, key := range []string{"asset", "buyer"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		addr, err := address.Parse(raw)
		if err != nil {
			return f, dErrors.NewValidation(key, dErrors.ReasonInvalidVariant, key+" is not a valid base58 key")
		}
		if key == "asset" {
			f.Asset = &addr
		} else {
			f.Buyer = &addr
		}
	}
	for _, part := range liststr.SplitListLower(q["status"]...) {
		st, err := models.ParseStatus(part)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	return f, nil
}
