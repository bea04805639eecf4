package sqlite

import (
	"context"
	"errors"

	"github.com/saehwan/assetledger/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

type LedgerRepository struct {
	db *gorm.DB
}

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func notFound(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError(kind, id)
	}
	return err
}

/* ----- users ----- */

func (r *LedgerRepository) CreateUser(ctx context.Context, value domain.User) (domain.User, error) {
	m := UserModel{DisplayName: value.DisplayName, Role: string(value.Role)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.User{}, err
	}
	return toUser(m), nil
}

func (r *LedgerRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows := make([]UserModel, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		result = append(result, toUser(m))
	}
	return result, nil
}

func (r *LedgerRepository) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.User{}, notFound(err, "user", id)
	}
	return toUser(m), nil
}

func (r *LedgerRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&count).Error
	return count, err
}

/* ----- locations ----- */

func (r *LedgerRepository) CreateLocation(ctx context.Context, value domain.Location) (domain.Location, error) {
	m := LocationModel{Name: value.Name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Location{}, err
	}
	return toLocation(m), nil
}

func (r *LedgerRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows := make([]LocationModel, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Location, 0, len(rows))
	for _, m := range rows {
		result = append(result, toLocation(m))
	}
	return result, nil
}

func (r *LedgerRepository) GetLocationByID(ctx context.Context, id uint) (domain.Location, error) {
	var m LocationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Location{}, notFound(err, "location", id)
	}
	return toLocation(m), nil
}

/* ----- purchase orders ----- */

func (r *LedgerRepository) CreatePurchaseOrder(ctx context.Context, value domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	m := PurchaseOrderModel{
		VendorName:     value.VendorName,
		PONumber:       value.PONumber,
		RequestedByID:  value.RequestedByID,
		PurchasedAt:    value.PurchasedAt,
		PurchaseReason: value.PurchaseReason,
		CostCenter:     value.CostCenter,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.PurchaseOrder{}, err
	}
	return toPurchaseOrder(m), nil
}

func (r *LedgerRepository) ListPurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	rows := make([]PurchaseOrderModel, 0)
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.PurchaseOrder, 0, len(rows))
	for _, m := range rows {
		result = append(result, toPurchaseOrder(m))
	}
	return result, nil
}

func (r *LedgerRepository) GetPurchaseOrderByID(ctx context.Context, id uint) (domain.PurchaseOrder, error) {
	var m PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.PurchaseOrder{}, notFound(err, "purchase order", id)
	}
	return toPurchaseOrder(m), nil
}

func (r *LedgerRepository) CreatePurchaseOrderLine(ctx context.Context, value domain.PurchaseOrderLine) (domain.PurchaseOrderLine, error) {
	m := PurchaseOrderLineModel{
		POID:         value.POID,
		ItemCategory: value.ItemCategory,
		ModelName:    value.ModelName,
		Description:  value.Description,
		QtyOrdered:   value.QtyOrdered,
		UnitPrice:    value.UnitPrice,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.PurchaseOrderLine{}, err
	}
	return toPurchaseOrderLine(m), nil
}

func (r *LedgerRepository) ListPurchaseOrderLines(ctx context.Context, poID uint) ([]domain.PurchaseOrderLine, error) {
	rows := make([]PurchaseOrderLineModel, 0)
	if err := r.db.WithContext(ctx).Where("po_id = ?", poID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.PurchaseOrderLine, 0, len(rows))
	for _, m := range rows {
		result = append(result, toPurchaseOrderLine(m))
	}
	return result, nil
}

func (r *LedgerRepository) GetPurchaseOrderLineByID(ctx context.Context, id uint) (domain.PurchaseOrderLine, error) {
	var m PurchaseOrderLineModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.PurchaseOrderLine{}, notFound(err, "po line", id)
	}
	return toPurchaseOrderLine(m), nil
}

/* ----- assets ----- */

func (r *LedgerRepository) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	rows := make([]AssetModel, 0)
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Asset, 0, len(rows))
	for _, m := range rows {
		result = append(result, toAsset(m))
	}
	return result, nil
}

func (r *LedgerRepository) GetAssetByID(ctx context.Context, id uint) (domain.Asset, error) {
	var m AssetModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Asset{}, notFound(err, "asset", id)
	}
	return toAsset(m), nil
}

func (r *LedgerRepository) MaxAssetID(ctx context.Context) (uint, error) {
	var max uint
	if err := r.db.WithContext(ctx).Raw(`SELECT COALESCE(MAX(id), 0) FROM assets`).Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// CreateAssetsWithEvents inserts the batch and its birth events inside one
// transaction. Asset ids arrive pre-allocated by the caller; event ids come
// from the autoincrement and stay monotonic because inserts happen in order.
func (r *LedgerRepository) CreateAssetsWithEvents(ctx context.Context, assets []domain.Asset, events []domain.AssetEvent) ([]domain.Asset, error) {
	created := make([]domain.Asset, 0, len(assets))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assets {
			m := AssetModel{
				ID:                a.ID,
				AssetTag:          a.AssetTag,
				SerialNumber:      a.SerialNumber,
				CurrentStatus:     string(a.CurrentStatus),
				CurrentOwnerID:    a.CurrentOwnerID,
				CurrentLocationID: a.CurrentLocationID,
				AcquisitionDate:   a.AcquisitionDate,
				POLineID:          a.POLineID,
				Notes:             a.Notes,
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			created = append(created, toAsset(m))
		}
		for _, e := range events {
			m := fromEvent(e)
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyTransition writes the asset's new status/owner/location and appends
// the event in one transaction, so a reader never sees one without the other.
func (r *LedgerRepository) ApplyTransition(ctx context.Context, asset domain.Asset, event domain.AssetEvent) (domain.Asset, error) {
	var out AssetModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"current_status":      string(asset.CurrentStatus),
			"current_owner_id":    asset.CurrentOwnerID,
			"current_location_id": asset.CurrentLocationID,
		}
		res := tx.Model(&AssetModel{}).Where("id = ?", asset.ID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError("asset", asset.ID)
		}
		m := fromEvent(event)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return tx.First(&out, asset.ID).Error
	})
	if err != nil {
		return domain.Asset{}, err
	}
	return toAsset(out), nil
}

/* ----- events ----- */

func (r *LedgerRepository) ListEventsByAssetID(ctx context.Context, assetID uint) ([]domain.AssetEvent, error) {
	rows := make([]AssetEventModel, 0)
	if err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.AssetEvent, 0, len(rows))
	for _, m := range rows {
		result = append(result, toEvent(m))
	}
	return result, nil
}

/* ----- mapping ----- */

func toUser(m UserModel) domain.User {
	return domain.User{ID: m.ID, DisplayName: m.DisplayName, Role: domain.Role(m.Role), CreatedAt: m.CreatedAt}
}

func toLocation(m LocationModel) domain.Location {
	return domain.Location{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

func toPurchaseOrder(m PurchaseOrderModel) domain.PurchaseOrder {
	return domain.PurchaseOrder{
		ID:             m.ID,
		VendorName:     m.VendorName,
		PONumber:       m.PONumber,
		RequestedByID:  m.RequestedByID,
		PurchasedAt:    m.PurchasedAt,
		PurchaseReason: m.PurchaseReason,
		CostCenter:     m.CostCenter,
		CreatedAt:      m.CreatedAt,
	}
}

func toPurchaseOrderLine(m PurchaseOrderLineModel) domain.PurchaseOrderLine {
	return domain.PurchaseOrderLine{
		ID:           m.ID,
		POID:         m.POID,
		ItemCategory: m.ItemCategory,
		ModelName:    m.ModelName,
		Description:  m.Description,
		QtyOrdered:   m.QtyOrdered,
		UnitPrice:    m.UnitPrice,
		CreatedAt:    m.CreatedAt,
	}
}

func toAsset(m AssetModel) domain.Asset {
	return domain.Asset{
		ID:                m.ID,
		AssetTag:          m.AssetTag,
		SerialNumber:      m.SerialNumber,
		CurrentStatus:     domain.AssetStatus(m.CurrentStatus),
		CurrentOwnerID:    m.CurrentOwnerID,
		CurrentLocationID: m.CurrentLocationID,
		AcquisitionDate:   m.AcquisitionDate,
		POLineID:          m.POLineID,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toEvent(m AssetEventModel) domain.AssetEvent {
	var from *domain.AssetStatus
	if m.FromStatus != nil {
		s := domain.AssetStatus(*m.FromStatus)
		from = &s
	}
	return domain.AssetEvent{
		ID:             m.ID,
		AssetID:        m.AssetID,
		EventType:      domain.AssetStatus(m.EventType),
		EventTime:      m.EventTime,
		PerformedByID:  m.PerformedByID,
		FromStatus:     from,
		ToStatus:       domain.AssetStatus(m.ToStatus),
		Reason:         m.Reason,
		ReferenceDoc:   m.ReferenceDoc,
		FromOwnerID:    m.FromOwnerID,
		ToOwnerID:      m.ToOwnerID,
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
	}
}

func fromEvent(e domain.AssetEvent) AssetEventModel {
	var from *string
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		from = &s
	}
	return AssetEventModel{
		AssetID:        e.AssetID,
		EventType:      string(e.EventType),
		EventTime:      e.EventTime,
		PerformedByID:  e.PerformedByID,
		FromStatus:     from,
		ToStatus:       string(e.ToStatus),
		Reason:         e.Reason,
		ReferenceDoc:   e.ReferenceDoc,
		FromOwnerID:    e.FromOwnerID,
		ToOwnerID:      e.ToOwnerID,
		FromLocationID: e.FromLocationID,
		ToLocationID:   e.ToLocationID,
	}
}
