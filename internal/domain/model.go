package domain

import "time"

// AssetStatus is the lifecycle state of an asset. POCreated exists for
// display parity with purchase records and is never assigned to an asset.
type AssetStatus string

const (
	StatusPOCreated AssetStatus = "PO_CREATED"
	StatusReceived  AssetStatus = "RECEIVED"
	StatusIssued    AssetStatus = "ISSUED"
	StatusReturned  AssetStatus = "RETURNED"
	StatusDisposed  AssetStatus = "DISPOSED"
)

// CanIssue reports whether an asset in status s may be issued to an owner.
func CanIssue(s AssetStatus) bool {
	return s == StatusReceived || s == StatusReturned
}

// CanReturn reports whether an asset in status s may be returned to stock.
func CanReturn(s AssetStatus) bool {
	return s == StatusIssued
}

// CanDispose reports whether an asset in status s may be disposed.
// DISPOSED is terminal: no predicate accepts it as a source.
func CanDispose(s AssetStatus) bool {
	return s == StatusReceived || s == StatusReturned
}

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleGA    Role = "GA"
	RoleIT    Role = "IT"
	RoleUser  Role = "USER"
	RoleAudit Role = "AUDIT"
)

// KnownRole reports whether r is one of the fixed role values.
func KnownRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleGA, RoleIT, RoleUser, RoleAudit:
		return true
	}
	return false
}

type User struct {
	ID          uint      `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type Location struct {
	ID        uint      `json:"location_id"`
	Name      string    `json:"location_name"`
	CreatedAt time.Time `json:"created_at"`
}

type PurchaseOrder struct {
	ID             uint      `json:"po_id"`
	VendorName     *string   `json:"vendor_name,omitempty"`
	PONumber       *string   `json:"po_number,omitempty"`
	RequestedByID  uint      `json:"requested_by"`
	PurchasedAt    time.Time `json:"purchased_at"`
	PurchaseReason string    `json:"purchase_reason"`
	CostCenter     *string   `json:"cost_center,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type PurchaseOrderLine struct {
	ID           uint      `json:"po_line_id"`
	POID         uint      `json:"po_id"`
	ItemCategory string    `json:"item_category"`
	ModelName    *string   `json:"model_name,omitempty"`
	Description  *string   `json:"description,omitempty"`
	QtyOrdered   int       `json:"qty_ordered"`
	UnitPrice    *float64  `json:"unit_price,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Asset carries the derived "latest" view of one tracked item. Owner and
// location are held as identifiers only; display names come from the master
// directory at read time. History lives in the event log.
type Asset struct {
	ID                uint        `json:"asset_id"`
	AssetTag          string      `json:"asset_tag"`
	SerialNumber      *string     `json:"serial_number,omitempty"`
	CurrentStatus     AssetStatus `json:"current_status"`
	CurrentOwnerID    *uint       `json:"current_owner_id,omitempty"`
	CurrentLocationID *uint       `json:"current_location_id,omitempty"`
	AcquisitionDate   *time.Time  `json:"acquisition_date,omitempty"`
	POLineID          *uint       `json:"po_line_id,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// AssetEvent is one immutable entry of the audit trail. Events are ordered by
// increasing ID, which the store assigns at append time and never rewrites.
type AssetEvent struct {
	ID             uint         `json:"event_id"`
	AssetID        uint         `json:"asset_id"`
	EventType      AssetStatus  `json:"event_type"`
	EventTime      time.Time    `json:"event_time"`
	PerformedByID  uint         `json:"performed_by"`
	FromStatus     *AssetStatus `json:"from_status,omitempty"`
	ToStatus       AssetStatus  `json:"to_status"`
	Reason         *string      `json:"reason,omitempty"`
	ReferenceDoc   *string      `json:"reference_doc,omitempty"`
	FromOwnerID    *uint        `json:"from_owner_user_id,omitempty"`
	ToOwnerID      *uint        `json:"to_owner_user_id,omitempty"`
	FromLocationID *uint        `json:"from_location_id,omitempty"`
	ToLocationID   *uint        `json:"to_location_id,omitempty"`
}
