package types

import "time"

// BindingState is the lifecycle state of a Binding. Transitions between
// states are governed by pkg/state; nothing else may move a binding.
type BindingState string

const (
	BindingNone    BindingState = "none"
	BindingPending BindingState = "pending"
	BindingActive  BindingState = "active"
	BindingRemoved BindingState = "removed"
)

// OfferState is the lifecycle state of an Offer. Rejected is terminal.
type OfferState string

const (
	OfferNone     OfferState = "none"
	OfferCreated  OfferState = "created"
	OfferActive   OfferState = "active"
	OfferRejected OfferState = "rejected"
)

// Binding is the persisted association between a file extension and an
// application. The store owns creation and deletion; the OS integration
// layer only updates OSSynced, OSSyncedAt, PreviousOSDefault and UpdatedAt.
//
// Invariant: OSSynced == true implies a prior successful SetDefault for
// Extension whose recorded previous default is the OS state observed
// immediately before that call.
type Binding struct {
	ID              string       `json:"id"`
	Extension       string       `json:"extension"`
	ApplicationPath string       `json:"application_path"`
	AppName         string       `json:"app_name,omitempty"`
	BundleOrProgID  string       `json:"bundle_or_prog_id,omitempty"`
	State           BindingState `json:"state"`

	OSSynced          bool       `json:"os_synced"`
	OSSyncedAt        *time.Time `json:"os_synced_at,omitempty"`
	PreviousOSDefault string     `json:"previous_os_default,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Offer is a named shortcut pointing at a Binding. Offers share the
// binding's lifecycle mechanics but are never subject to OS sync.
type Offer struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	BindingID string     `json:"binding_id"`
	State     OfferState `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
