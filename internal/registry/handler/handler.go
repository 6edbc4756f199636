package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"daviz/internal/registry/models"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/httputil"
	"daviz/pkg/platform/middleware/auth"
	request "daviz/pkg/platform/middleware/request"
	"daviz/pkg/requestcontext"
)

// InstructionService executes signed registry instructions.
type InstructionService interface {
	CreateFramework(ctx context.Context, signer address.Address, req *models.CreateFrameworkRequest) (address.Address, error)
	UpdateFramework(ctx context.Context, signer address.Address, framework address.Address, patch models.FrameworkPatch) error
	CreateAssetProfile(ctx context.Context, signer address.Address, req *models.CreateAssetProfileRequest) (address.Address, error)
	IssueTrust(ctx context.Context, signer address.Address, req *models.IssueTrustRequest) (address.Address, error)
}

// QueryService answers unauthenticated reads.
type QueryService interface {
	GetFramework(ctx context.Context, addr address.Address) (*models.FrameworkAccount, error)
	GetAssetProfile(ctx context.Context, addr address.Address) (*models.AssetProfileAccount, error)
	GetTrustRecord(ctx context.Context, addr address.Address) (*models.TrustRecordAccount, error)
	ListFrameworks(ctx context.Context, authority *address.Address) ([]models.FrameworkAccount, error)
	ListAssetProfiles(ctx context.Context, owner *address.Address) ([]models.AssetProfileAccount, error)
	ListTrustRecords(ctx context.Context, f models.TrustRecordFilter) ([]models.TrustRecordAccount, error)
	TrustRecordsWithDetails(ctx context.Context) ([]models.EnrichedTrustRecord, error)
	SearchByTrustScore(ctx context.Context, minScore, maxScore *uint8) ([]models.EnrichedTrustRecord, error)
	SearchAssetsByFramework(ctx context.Context, framework address.Address) ([]models.AssetWithTrust, error)
	ValidListings(ctx context.Context, f models.ListingFilter) ([]models.EnrichedTrustRecord, error)
}

// Handler is the HTTP surface of the registry. Writes require a signer token;
// reads are public.
type Handler struct {
	instructions InstructionService
	queries      QueryService
	verifier     auth.SignerVerifier
	logger       *slog.Logger
}

func New(instructions InstructionService, queries QueryService, verifier auth.SignerVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		instructions: instructions,
		queries:      queries,
		verifier:     verifier,
		logger:       logger,
	}
}

// Register mounts the registry routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSigner(h.verifier, h.logger))
		r.Post("/frameworks", h.handleCreateFramework)
		r.Patch("/frameworks/{address}", h.handleUpdateFramework)
		r.Post("/assets", h.handleCreateAssetProfile)
		r.Post("/trust", h.handleIssueTrust)
	})

	r.Get("/frameworks", h.handleListFrameworks)
	r.Get("/frameworks/{address}", h.handleGetFramework)
	r.Get("/frameworks/{address}/assets", h.handleAssetsByFramework)
	r.Get("/assets", h.handleListAssetProfiles)
	r.Get("/assets/{address}", h.handleGetAssetProfile)
	r.Get("/trust", h.handleListTrustRecords)
	r.Get("/trust/details", h.handleTrustDetails)
	r.Get("/trust/search", h.handleSearchByScore)
	r.Get("/trust/{address}", h.handleGetTrustRecord)
	r.Get("/listings", h.handleListings)
}

type createdResponse struct {
	Address address.Address `json:"address"`
}

// -----------------------------------------------------------------------------
// Instructions
// -----------------------------------------------------------------------------

func (h *Handler) handleCreateFramework(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateFrameworkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "create framework", err)
		return
	}
	addr, err := h.instructions.CreateFramework(ctx, h.signer(ctx), &req)
	if err != nil {
		h.writeError(ctx, w, "create framework", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{Address: addr})
}

func (h *Handler) handleUpdateFramework(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, err := pathAddress(r)
	if err != nil {
		h.writeError(ctx, w, "update framework", err)
		return
	}
	var patch models.FrameworkPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.writeError(ctx, w, "update framework", err)
		return
	}
	if err := h.instructions.UpdateFramework(ctx, h.signer(ctx), addr, patch); err != nil {
		h.writeError(ctx, w, "update framework", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateAssetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateAssetProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "create asset profile", err)
		return
	}
	addr, err := h.instructions.CreateAssetProfile(ctx, h.signer(ctx), &req)
	if err != nil {
		h.writeError(ctx, w, "create asset profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{Address: addr})
}

func (h *Handler) handleIssueTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.IssueTrustRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "issue trust", err)
		return
	}
	addr, err := h.instructions.IssueTrust(ctx, h.signer(ctx), &req)
	if err != nil {
		h.writeError(ctx, w, "issue trust", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{Address: addr})
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (h *Handler) handleGetFramework(w http.ResponseWriter, r *http.Request) {
	respondByAddress(h, w, r, "get framework", h.queries.GetFramework)
}

func (h *Handler) handleGetAssetProfile(w http.ResponseWriter, r *http.Request) {
	respondByAddress(h, w, r, "get asset profile", h.queries.GetAssetProfile)
}

func (h *Handler) handleGetTrustRecord(w http.ResponseWriter, r *http.Request) {
	respondByAddress(h, w, r, "get trust record", h.queries.GetTrustRecord)
}

func (h *Handler) handleAssetsByFramework(w http.ResponseWriter, r *http.Request) {
	respondByAddress(h, w, r, "assets by framework", h.queries.SearchAssetsByFramework)
}

func respondByAddress[T any](h *Handler, w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context, address.Address) (T, error)) {
	ctx := r.Context()
	addr, err := pathAddress(r)
	if err != nil {
		h.writeError(ctx, w, op, err)
		return
	}
	out, err := fetch(ctx, addr)
	if err != nil {
		h.writeError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListFrameworks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authority, err := queryAddress(r, "authority")
	if err != nil {
		h.writeError(ctx, w, "list frameworks", err)
		return
	}
	out, err := h.queries.ListFrameworks(ctx, authority)
	h.respond(ctx, w, "list frameworks", out, err)
}

func (h *Handler) handleListAssetProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := queryAddress(r, "owner")
	if err != nil {
		h.writeError(ctx, w, "list asset profiles", err)
		return
	}
	out, err := h.queries.ListAssetProfiles(ctx, owner)
	h.respond(ctx, w, "list asset profiles", out, err)
}

func (h *Handler) handleListTrustRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		f   models.TrustRecordFilter
		err error
	)
	if f.Framework, err = queryAddress(r, "framework"); err == nil {
		if f.Issuer, err = queryAddress(r, "issuer"); err == nil {
			f.Asset, err = queryAddress(r, "asset")
		}
	}
	if err != nil {
		h.writeError(ctx, w, "list trust records", err)
		return
	}
	out, err := h.queries.ListTrustRecords(ctx, f)
	h.respond(ctx, w, "list trust records", out, err)
}

func (h *Handler) handleTrustDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.queries.TrustRecordsWithDetails(ctx)
	h.respond(ctx, w, "trust records with details", out, err)
}

func (h *Handler) handleSearchByScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	minScore, maxScore, err := scoreRange(r)
	if err != nil {
		h.writeError(ctx, w, "search by score", err)
		return
	}
	out, err := h.queries.SearchByTrustScore(ctx, minScore, maxScore)
	h.respond(ctx, w, "search by score", out, err)
}

func (h *Handler) handleListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var f models.ListingFilter
	var err error
	if f.MinScore, f.MaxScore, err = scoreRange(r); err != nil {
		h.writeError(ctx, w, "listings", err)
		return
	}
	f.SearchTerm = r.URL.Query().Get("q")
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := models.ParseAssetType(raw)
		if err != nil {
			h.writeError(ctx, w, "listings", err)
			return
		}
		f.AssetType = &t
	}
	out, err := h.queries.ValidListings(ctx, f)
	h.respond(ctx, w, "listings", out, err)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (h *Handler) signer(ctx context.Context) address.Address {
	signer, _ := requestcontext.Signer(ctx)
	return signer
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, op string, out any, err error) {
	if err != nil {
		h.writeError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) || !isCoded(err) {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, op+" rejected",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func isCoded(err error) bool {
	_, ok := dErrors.As(err)
	return ok
}

func pathAddress(r *http.Request) (address.Address, error) {
	raw := chi.URLParam(r, "address")
	addr, err := address.Parse(raw)
	if err != nil {
		return address.Address{}, dErrors.NewValidation("address", dErrors.ReasonInvalidVariant, "address is not a valid base58 key")
	}
	return addr, nil
}

func queryAddress(r *http.Request, key string) (*address.Address, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	addr, err := address.Parse(raw)
	if err != nil {
		return nil, dErrors.NewValidation(key, dErrors.ReasonInvalidVariant, key+" is not a valid base58 key")
	}
	return &addr, nil
}

func scoreRange(r *http.Request) (minScore, maxScore *uint8, err error) {
	if minScore, err = queryScore(r, "min"); err != nil {
		return nil, nil, err
	}
	if maxScore, err = queryScore(r, "max"); err != nil {
		return nil, nil, err
	}
	return minScore, maxScore, nil
}

func queryScore(r *http.Request, key string) (*uint8, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || models.ValidateTrustScore(v) != nil {
		return nil, dErrors.NewValidation(key, dErrors.ReasonScoreOutOfRange, key+" must be an integer between 0 and 100")
	}
	score := uint8(v)
	return &score, nil
}
