package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/saehwan/assetledger/internal/domain"
)

// LedgerService is the lifecycle core: it validates commands against the
// current asset state and the master directory, mutates the asset, and
// appends the matching event through the repository. A single mutex
// serializes the lifecycle operations so that "read current status, then
// transition" is atomic; reads and bookkeeping creates go through unlocked.
type LedgerService struct {
	repo domain.LedgerRepository

	mu  sync.Mutex
	now func() time.Time
}

func NewLedgerService(repo domain.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

/* ----- asset reads ----- */

func (s *LedgerService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.repo.ListAssets(ctx)
}

func (s *LedgerService) GetAsset(ctx context.Context, id uint) (domain.Asset, error) {
	return s.repo.GetAssetByID(ctx, id)
}

// ListTimeline returns all events for one asset in ascending event id order.
func (s *LedgerService) ListTimeline(ctx context.Context, assetID uint) ([]domain.AssetEvent, error) {
	if _, err := s.repo.GetAssetByID(ctx, assetID); err != nil {
		return nil, err
	}
	return s.repo.ListEventsByAssetID(ctx, assetID)
}

/* ----- lifecycle transitions ----- */

// Issue hands an asset to an owner. Legal from RECEIVED or RETURNED; the
// location is left where it was.
func (s *LedgerService) Issue(ctx context.Context, assetID, toOwnerUserID, performedBy uint, reason *string) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	performer, err := s.repo.GetUserByID(ctx, performedBy)
	if err != nil {
		return domain.Asset{}, err
	}
	toOwner, err := s.repo.GetUserByID(ctx, toOwnerUserID)
	if err != nil {
		return domain.Asset{}, err
	}
	asset, err := s.repo.GetAssetByID(ctx, assetID)
	if err != nil {
		return domain.Asset{}, err
	}
	if !domain.CanIssue(asset.CurrentStatus) {
		return domain.Asset{}, &domain.InvalidTransitionError{Op: "issue", From: asset.CurrentStatus}
	}

	fromStatus := asset.CurrentStatus
	fromOwner := asset.CurrentOwnerID
	loc := asset.CurrentLocationID

	asset.CurrentStatus = domain.StatusIssued
	asset.CurrentOwnerID = &toOwner.ID

	return s.repo.ApplyTransition(ctx, asset, domain.AssetEvent{
		AssetID:        asset.ID,
		EventType:      domain.StatusIssued,
		EventTime:      s.now(),
		PerformedByID:  performer.ID,
		FromStatus:     &fromStatus,
		ToStatus:       domain.StatusIssued,
		Reason:         trimmedOrNil(reason),
		FromOwnerID:    fromOwner,
		ToOwnerID:      &toOwner.ID,
		FromLocationID: loc,
		ToLocationID:   loc,
	})
}

// Return takes an issued asset back into stock at the given location and
// clears the owner.
func (s *LedgerService) Return(ctx context.Context, assetID, toLocationID, performedBy uint, reason *string) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	performer, err := s.repo.GetUserByID(ctx, performedBy)
	if err != nil {
		return domain.Asset{}, err
	}
	toLoc, err := s.repo.GetLocationByID(ctx, toLocationID)
	if err != nil {
		return domain.Asset{}, err
	}
	asset, err := s.repo.GetAssetByID(ctx, assetID)
	if err != nil {
		return domain.Asset{}, err
	}
	if !domain.CanReturn(asset.CurrentStatus) {
		return domain.Asset{}, &domain.InvalidTransitionError{Op: "return", From: asset.CurrentStatus}
	}

	fromOwner := asset.CurrentOwnerID
	fromLoc := asset.CurrentLocationID

	asset.CurrentStatus = domain.StatusReturned
	asset.CurrentOwnerID = nil
	asset.CurrentLocationID = &toLoc.ID

	return s.repo.ApplyTransition(ctx, asset, domain.AssetEvent{
		AssetID:        asset.ID,
		EventType:      domain.StatusReturned,
		EventTime:      s.now(),
		PerformedByID:  performer.ID,
		FromStatus:     statusPtr(domain.StatusIssued),
		ToStatus:       domain.StatusReturned,
		Reason:         trimmedOrNil(reason),
		FromOwnerID:    fromOwner,
		FromLocationID: fromLoc,
		ToLocationID:   &toLoc.ID,
	})
}

// Dispose retires an asset permanently. The reason is mandatory and is
// checked before any state lookup; the location is kept so the record still
// says where the carcass sits.
func (s *LedgerService) Dispose(ctx context.Context, assetID, performedBy uint, reason string) (domain.Asset, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.Asset{}, domain.Validationf("dispose reason is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	performer, err := s.repo.GetUserByID(ctx, performedBy)
	if err != nil {
		return domain.Asset{}, err
	}
	asset, err := s.repo.GetAssetByID(ctx, assetID)
	if err != nil {
		return domain.Asset{}, err
	}
	if !domain.CanDispose(asset.CurrentStatus) {
		return domain.Asset{}, &domain.InvalidTransitionError{Op: "dispose", From: asset.CurrentStatus}
	}

	fromStatus := asset.CurrentStatus
	fromOwner := asset.CurrentOwnerID
	loc := asset.CurrentLocationID

	asset.CurrentStatus = domain.StatusDisposed
	asset.CurrentOwnerID = nil

	return s.repo.ApplyTransition(ctx, asset, domain.AssetEvent{
		AssetID:        asset.ID,
		EventType:      domain.StatusDisposed,
		EventTime:      s.now(),
		PerformedByID:  performer.ID,
		FromStatus:     &fromStatus,
		ToStatus:       domain.StatusDisposed,
		Reason:         &reason,
		FromOwnerID:    fromOwner,
		FromLocationID: loc,
		ToLocationID:   loc,
	})
}

/* ----- receiving ----- */

// Receive materializes qty new assets from a purchase order line, each born
// RECEIVED at the given location with a birth event. Asset ids are allocated
// contiguously from max+1 and the tag is derived from the id, which keeps
// tags globally unique without a separate sequence. Cumulative received
// quantity is not capped by the line's ordered quantity; over-receiving is
// the caller's call to make.
func (s *LedgerService) Receive(ctx context.Context, poLineID uint, qty int, locationID, performedBy uint, referenceDoc *string) ([]domain.Asset, error) {
	if qty <= 0 {
		return nil, domain.Validationf("qty_received must be > 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.repo.GetPurchaseOrderLineByID(ctx, poLineID)
	if err != nil {
		return nil, err
	}
	po, err := s.repo.GetPurchaseOrderByID(ctx, line.POID)
	if err != nil {
		return nil, err
	}
	loc, err := s.repo.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	performer, err := s.repo.GetUserByID(ctx, performedBy)
	if err != nil {
		return nil, err
	}

	baseID, err := s.repo.MaxAssetID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	acquired := po.PurchasedAt
	assets := make([]domain.Asset, 0, qty)
	events := make([]domain.AssetEvent, 0, qty)
	for i := 0; i < qty; i++ {
		id := baseID + uint(i) + 1
		assets = append(assets, domain.Asset{
			ID:                id,
			AssetTag:          assetTag(now.Year(), id),
			CurrentStatus:     domain.StatusReceived,
			CurrentLocationID: &loc.ID,
			AcquisitionDate:   &acquired,
			POLineID:          &line.ID,
		})
		events = append(events, domain.AssetEvent{
			AssetID:       id,
			EventType:     domain.StatusReceived,
			EventTime:     now,
			PerformedByID: performer.ID,
			ToStatus:      domain.StatusReceived,
			ReferenceDoc:  trimmedOrNil(referenceDoc),
			ToLocationID:  &loc.ID,
		})
	}

	return s.repo.CreateAssetsWithEvents(ctx, assets, events)
}

func assetTag(year int, id uint) string {
	return fmt.Sprintf("IT-%d-%06d", year, id)
}

/* ----- purchase record store ----- */

func (s *LedgerService) ListPurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	return s.repo.ListPurchaseOrders(ctx)
}

func (s *LedgerService) GetPurchaseOrder(ctx context.Context, id uint) (domain.PurchaseOrder, error) {
	return s.repo.GetPurchaseOrderByID(ctx, id)
}

func (s *LedgerService) ListPurchaseOrderLines(ctx context.Context, poID uint) ([]domain.PurchaseOrderLine, error) {
	if _, err := s.repo.GetPurchaseOrderByID(ctx, poID); err != nil {
		return nil, err
	}
	return s.repo.ListPurchaseOrderLines(ctx, poID)
}

func (s *LedgerService) CreatePurchaseOrder(ctx context.Context, value domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	if strings.TrimSpace(value.PurchaseReason) == "" {
		return domain.PurchaseOrder{}, domain.Validationf("purchase_reason is required")
	}
	if value.PurchasedAt.IsZero() {
		return domain.PurchaseOrder{}, domain.Validationf("purchased_at is required")
	}
	if _, err := s.repo.GetUserByID(ctx, value.RequestedByID); err != nil {
		return domain.PurchaseOrder{}, err
	}
	return s.repo.CreatePurchaseOrder(ctx, value)
}

func (s *LedgerService) AddPurchaseOrderLine(ctx context.Context, value domain.PurchaseOrderLine) (domain.PurchaseOrderLine, error) {
	if strings.TrimSpace(value.ItemCategory) == "" {
		return domain.PurchaseOrderLine{}, domain.Validationf("item_category is required")
	}
	if value.QtyOrdered <= 0 {
		return domain.PurchaseOrderLine{}, domain.Validationf("qty_ordered must be > 0")
	}
	if _, err := s.repo.GetPurchaseOrderByID(ctx, value.POID); err != nil {
		return domain.PurchaseOrderLine{}, err
	}
	return s.repo.CreatePurchaseOrderLine(ctx, value)
}

/* ----- master directory ----- */

func (s *LedgerService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *LedgerService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *LedgerService) CreateUser(ctx context.Context, displayName string, role domain.Role) (domain.User, error) {
	if strings.TrimSpace(displayName) == "" {
		return domain.User{}, domain.Validationf("display_name is required")
	}
	if !domain.KnownRole(role) {
		return domain.User{}, domain.Validationf("unknown role %q", string(role))
	}
	return s.repo.CreateUser(ctx, domain.User{DisplayName: strings.TrimSpace(displayName), Role: role})
}

func (s *LedgerService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.repo.ListLocations(ctx)
}

func (s *LedgerService) GetLocation(ctx context.Context, id uint) (domain.Location, error) {
	return s.repo.GetLocationByID(ctx, id)
}

func (s *LedgerService) CreateLocation(ctx context.Context, name string) (domain.Location, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Location{}, domain.Validationf("location_name is required")
	}
	return s.repo.CreateLocation(ctx, domain.Location{Name: strings.TrimSpace(name)})
}

// Bootstrap seeds the master directory on first run: one IT admin user and
// the three stock locations. No-op when any user already exists.
func (s *LedgerService) Bootstrap(ctx context.Context, adminName string) error {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if strings.TrimSpace(adminName) == "" {
		adminName = "IT Admin"
	}
	if _, err := s.repo.CreateUser(ctx, domain.User{DisplayName: adminName, Role: domain.RoleIT}); err != nil {
		return err
	}
	for _, name := range []string{"IT Room", "Warehouse", "Office"} {
		if _, err := s.repo.CreateLocation(ctx, domain.Location{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func statusPtr(s domain.AssetStatus) *domain.AssetStatus {
	return &s
}
