package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
)

// Status is the lifecycle state of an interest order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions lists the states each status may move to. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusCancelled},
	StatusAccepted: {StatusCompleted},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", dErrors.NewValidation("status", dErrors.ReasonInvalidVariant,
			fmt.Sprintf("unknown order status %q", s))
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// PredecessorsOf returns every status that may move to next.
func PredecessorsOf(next Status) []Status {
	var out []Status
	for from, tos := range transitions {
		if slices.Contains(tos, next) {
			out = append(out, from)
		}
	}
	slices.Sort(out)
	return out
}

// InterestOrder is a buyer's expression of interest in a listed asset. Orders
// live outside the ledger and never affect registry state.
type InterestOrder struct {
	ID           uuid.UUID       `json:"id"`
	BuyerAddress address.Address `json:"buyerAddress"`
	AssetAddress address.Address `json:"assetPda"`
	Message      string          `json:"message"`
	ContactInfo  string          `json:"contactInfo"`
	Budget       *string         `json:"budget,omitempty"`
	Timeline     *string         `json:"timeline,omitempty"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Field limits for order input.
const (
	MaxMessageLen     = 1000
	MaxContactInfoLen = 200
	MaxBudgetLen      = 100
	MaxTimelineLen    = 100
)

// CreateOrderRequest is the buyer-supplied part of an order.
type CreateOrderRequest struct {
	AssetAddress address.Address `json:"assetPda"`
	Message      string          `json:"message"`
	ContactInfo  string          `json:"contactInfo"`
	Budget       *string         `json:"budget,omitempty"`
	Timeline     *string         `json:"timeline,omitempty"`
}

func (r *CreateOrderRequest) Validate() error {
	if r.AssetAddress.IsZero() {
		return dErrors.NewValidation("assetPda", dErrors.ReasonRequired, "asset address is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return dErrors.NewValidation("message", dErrors.ReasonRequired, "message is required")
	}
	if strings.TrimSpace(r.ContactInfo) == "" {
		return dErrors.NewValidation("contactInfo", dErrors.ReasonRequired, "contact info is required")
	}
	if err := checkLen("message", r.Message, MaxMessageLen); err != nil {
		return err
	}
	if err := checkLen("contactInfo", r.ContactInfo, MaxContactInfoLen); err != nil {
		return err
	}
	if r.Budget != nil {
		if err := checkLen("budget", *r.Budget, MaxBudgetLen); err != nil {
			return err
		}
	}
	if r.Timeline != nil {
		if err := checkLen("timeline", *r.Timeline, MaxTimelineLen); err != nil {
			return err
		}
	}
	return nil
}

func checkLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return dErrors.NewValidation(field, dErrors.ReasonFieldTooLong,
			fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}

// NewInterestOrder builds a pending order placed by buyer at now.
func NewInterestOrder(buyer address.Address, req *CreateOrderRequest, now time.Time) *InterestOrder {
	return &InterestOrder{
		ID:           uuid.New(),
		BuyerAddress: buyer,
		AssetAddress: req.AssetAddress,
		Message:      strings.TrimSpace(req.Message),
		ContactInfo:  strings.TrimSpace(req.ContactInfo),
		Budget:       trimmed(req.Budget),
		Timeline:     trimmed(req.Timeline),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// Filter narrows an order listing. Zero values do not filter.
type Filter struct {
	Asset    *address.Address
	Buyer    *address.Address
	Statuses []Status
}

func (f Filter) Matches(o *InterestOrder) bool {
	if f.Asset != nil && o.AssetAddress != *f.Asset {
		return false
	}
	if f.Buyer != nil && o.BuyerAddress != *f.Buyer {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	return true
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}
