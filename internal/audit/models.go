package audit

import "time"

// Category classifies events for routing and retention.
type Category string

const (
	// CategoryLedger covers accepted state transitions of registry accounts.
	CategoryLedger Category = "ledger"
	// CategorySecurity covers rejected instructions and signer failures.
	CategorySecurity Category = "security"
	// CategoryOperations covers off-ledger bookkeeping such as interest orders.
	CategoryOperations Category = "operations"
)

// Action names an audited event.
type Action string

const (
	ActionFrameworkCreated    Action = "framework_created"
	ActionFrameworkUpdated    Action = "framework_updated"
	ActionAssetProfileCreated Action = "asset_profile_created"
	ActionTrustIssued         Action = "trust_issued"
	ActionInstructionRejected Action = "instruction_rejected"

	ActionOrderCreated       Action = "order_created"
	ActionOrderStatusChanged Action = "order_status_changed"
)

var actionCategories = map[Action]Category{
	ActionFrameworkCreated:    CategoryLedger,
	ActionFrameworkUpdated:    CategoryLedger,
	ActionAssetProfileCreated: CategoryLedger,
	ActionTrustIssued:         CategoryLedger,
	ActionInstructionRejected: CategorySecurity,
	ActionOrderCreated:        CategoryOperations,
	ActionOrderStatusChanged:  CategoryOperations,
}

// Category returns the category of a known action, operations otherwise.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	// Signer is the base58 identity that submitted the instruction, if any.
	Signer string `json:"signer,omitempty"`
	// Subject is the address or id the action applies to.
	Subject string `json:"subject"`
	// Asset is the registry asset an order refers to.
	Asset       string   `json:"asset,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	EvidenceCID string   `json:"evidenceCid,omitempty"`
	RequestID   string   `json:"requestId,omitempty"`
	ClientIP    string   `json:"clientIp,omitempty"`
	UserAgent   string   `json:"userAgent,omitempty"`
	Device      string   `json:"device,omitempty"`
}
