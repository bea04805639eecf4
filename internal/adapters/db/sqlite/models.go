package sqlite

import "time"

type UserModel struct {
	ID          uint   `gorm:"primaryKey"`
	DisplayName string `gorm:"not null"`
	Role        string `gorm:"not null"`
	CreatedAt   time.Time
}

func (UserModel) TableName() string { return "users" }

type LocationModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	CreatedAt time.Time
}

func (LocationModel) TableName() string { return "locations" }

type PurchaseOrderModel struct {
	ID             uint `gorm:"primaryKey"`
	VendorName     *string
	PONumber       *string   `gorm:"column:po_number"`
	RequestedByID  uint      `gorm:"not null;index"`
	PurchasedAt    time.Time `gorm:"not null"`
	PurchaseReason string    `gorm:"not null"`
	CostCenter     *string
	CreatedAt      time.Time
}

func (PurchaseOrderModel) TableName() string { return "purchase_orders" }

type PurchaseOrderLineModel struct {
	ID           uint   `gorm:"primaryKey"`
	POID         uint   `gorm:"column:po_id;not null;index"`
	ItemCategory string `gorm:"not null"`
	ModelName    *string
	Description  *string
	QtyOrdered   int `gorm:"not null"`
	UnitPrice    *float64
	CreatedAt    time.Time
}

func (PurchaseOrderLineModel) TableName() string { return "purchase_order_lines" }

type AssetModel struct {
	ID                uint   `gorm:"primaryKey"`
	AssetTag          string `gorm:"not null;uniqueIndex"`
	SerialNumber      *string
	CurrentStatus     string `gorm:"not null;index"`
	CurrentOwnerID    *uint
	CurrentLocationID *uint
	AcquisitionDate   *time.Time
	POLineID          *uint `gorm:"column:po_line_id;index"`
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (AssetModel) TableName() string { return "assets" }

type AssetEventModel struct {
	ID             uint      `gorm:"primaryKey"`
	AssetID        uint      `gorm:"not null;index"`
	EventType      string    `gorm:"not null"`
	EventTime      time.Time `gorm:"not null"`
	PerformedByID  uint      `gorm:"not null"`
	FromStatus     *string
	ToStatus       string `gorm:"not null"`
	Reason         *string
	ReferenceDoc   *string
	FromOwnerID    *uint
	ToOwnerID      *uint
	FromLocationID *uint
	ToLocationID   *uint
	CreatedAt      time.Time
}

func (AssetEventModel) TableName() string { return "asset_events" }
