package domain

import "context"

// LedgerRepository is the storage collaborator of the lifecycle core. It
// provides atomic reads and writes over the owned entities; lookups that miss
// return an error matching ErrNotFound. The two write-path methods that touch
// an asset together with its events must apply both as a single unit.
type LedgerRepository interface {
	CreateUser(ctx context.Context, value User) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUserByID(ctx context.Context, id uint) (User, error)
	CountUsers(ctx context.Context) (int64, error)

	CreateLocation(ctx context.Context, value Location) (Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocationByID(ctx context.Context, id uint) (Location, error)

	CreatePurchaseOrder(ctx context.Context, value PurchaseOrder) (PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
	GetPurchaseOrderByID(ctx context.Context, id uint) (PurchaseOrder, error)
	CreatePurchaseOrderLine(ctx context.Context, value PurchaseOrderLine) (PurchaseOrderLine, error)
	ListPurchaseOrderLines(ctx context.Context, poID uint) ([]PurchaseOrderLine, error)
	GetPurchaseOrderLineByID(ctx context.Context, id uint) (PurchaseOrderLine, error)

	ListAssets(ctx context.Context) ([]Asset, error)
	GetAssetByID(ctx context.Context, id uint) (Asset, error)
	MaxAssetID(ctx context.Context) (uint, error)

	// CreateAssetsWithEvents inserts the received assets and their birth
	// events atomically; either all rows land or none do.
	CreateAssetsWithEvents(ctx context.Context, assets []Asset, events []AssetEvent) ([]Asset, error)

	// ApplyTransition persists the updated asset and appends its event as
	// one unit, so no reader observes one without the other.
	ApplyTransition(ctx context.Context, asset Asset, event AssetEvent) (Asset, error)

	ListEventsByAssetID(ctx context.Context, assetID uint) ([]AssetEvent, error)
}
