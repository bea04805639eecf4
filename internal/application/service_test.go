package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/saehwan/assetledger/internal/adapters/db/sqlite"
	"github.com/saehwan/assetledger/internal/domain"
)

type fixture struct {
	svc       *LedgerService
	admin     domain.User
	employee  domain.User
	warehouse domain.Location
	office    domain.Location
	line      domain.PurchaseOrderLine
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "assetledger_test.db")

	db, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	svc := NewLedgerService(sqlite.NewLedgerRepository(db))

	admin, err := svc.CreateUser(ctx, "IT Admin", domain.RoleIT)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	employee, err := svc.CreateUser(ctx, "Jamie Park", domain.RoleUser)
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	warehouse, err := svc.CreateLocation(ctx, "Warehouse")
	if err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	office, err := svc.CreateLocation(ctx, "Office")
	if err != nil {
		t.Fatalf("create office: %v", err)
	}

	po, err := svc.CreatePurchaseOrder(ctx, domain.PurchaseOrder{
		RequestedByID:  admin.ID,
		PurchasedAt:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PurchaseReason: "laptop refresh",
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}
	line, err := svc.AddPurchaseOrderLine(ctx, domain.PurchaseOrderLine{POID: po.ID, ItemCategory: "LAPTOP", QtyOrdered: 10})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	return fixture{svc: svc, admin: admin, employee: employee, warehouse: warehouse, office: office, line: line}
}

func (f fixture) receiveOne(t *testing.T, ctx context.Context) domain.Asset {
	t.Helper()
	assets, err := f.svc.Receive(ctx, f.line.ID, 1, f.warehouse.ID, f.admin.ID, nil)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	return assets[0]
}

func TestReceiveCreatesAssetsWithSequentialTagsAndBirthEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref := "DN-4711"
	assets, err := f.svc.Receive(ctx, f.line.ID, 3, f.warehouse.ID, f.admin.ID, &ref)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}

	year := time.Now().UTC().Year()
	for i, a := range assets {
		wantID := uint(i + 1)
		if a.ID != wantID {
			t.Fatalf("asset %d: expected id %d, got %d", i, wantID, a.ID)
		}
		wantTag := fmt.Sprintf("IT-%d-%06d", year, wantID)
		if a.AssetTag != wantTag {
			t.Fatalf("asset %d: expected tag %s, got %s", i, wantTag, a.AssetTag)
		}
		if a.CurrentStatus != domain.StatusReceived {
			t.Fatalf("asset %d: expected RECEIVED, got %s", i, a.CurrentStatus)
		}
		if a.CurrentOwnerID != nil {
			t.Fatalf("asset %d: expected no owner", i)
		}
		if a.CurrentLocationID == nil || *a.CurrentLocationID != f.warehouse.ID {
			t.Fatalf("asset %d: expected warehouse location", i)
		}
		if a.AcquisitionDate == nil || !a.AcquisitionDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("asset %d: acquisition date should come from the po", i)
		}
		if a.POLineID == nil || *a.POLineID != f.line.ID {
			t.Fatalf("asset %d: expected po line link", i)
		}

		events, err := f.svc.ListTimeline(ctx, a.ID)
		if err != nil {
			t.Fatalf("timeline: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("asset %d: expected one birth event, got %d", i, len(events))
		}
		e := events[0]
		if e.FromStatus != nil {
			t.Fatalf("asset %d: birth event should have no from_status", i)
		}
		if e.ToStatus != domain.StatusReceived {
			t.Fatalf("asset %d: birth event to_status should be RECEIVED", i)
		}
		if e.ReferenceDoc == nil || *e.ReferenceDoc != ref {
			t.Fatalf("asset %d: expected reference_doc %q", i, ref)
		}
	}

	// A second batch continues the id sequence.
	more, err := f.svc.Receive(ctx, f.line.ID, 2, f.warehouse.ID, f.admin.ID, nil)
	if err != nil {
		t.Fatalf("second receive: %v", err)
	}
	if more[0].ID != 4 || more[1].ID != 5 {
		t.Fatalf("expected ids 4 and 5, got %d and %d", more[0].ID, more[1].ID)
	}
}

func TestReceiveRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Receive(ctx, f.line.ID, 0, f.warehouse.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("qty 0: expected validation error, got %v", err)
	}
	if _, err := f.svc.Receive(ctx, f.line.ID, -2, f.warehouse.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative qty: expected validation error, got %v", err)
	}
	if _, err := f.svc.Receive(ctx, 999, 1, f.warehouse.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing line: expected not found, got %v", err)
	}
	if _, err := f.svc.Receive(ctx, f.line.ID, 1, 999, f.admin.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing location: expected not found, got %v", err)
	}
}

func TestIssueSetsOwnerAndKeepsLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	issued, err := f.svc.Issue(ctx, asset.ID, f.employee.ID, f.admin.ID, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.CurrentStatus != domain.StatusIssued {
		t.Fatalf("expected ISSUED, got %s", issued.CurrentStatus)
	}
	if issued.CurrentOwnerID == nil || *issued.CurrentOwnerID != f.employee.ID {
		t.Fatalf("expected owner %d", f.employee.ID)
	}
	if issued.CurrentLocationID == nil || *issued.CurrentLocationID != f.warehouse.ID {
		t.Fatalf("issue must not move the asset")
	}

	events, err := f.svc.ListTimeline(ctx, asset.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.ToStatus != domain.StatusIssued {
		t.Fatalf("last event to_status should be ISSUED, got %s", last.ToStatus)
	}
	if last.FromStatus == nil || *last.FromStatus != domain.StatusReceived {
		t.Fatalf("last event from_status should be RECEIVED")
	}
	if last.ToOwnerID == nil || *last.ToOwnerID != f.employee.ID {
		t.Fatalf("last event should carry the new owner")
	}
}

func TestIssueLegality(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	if _, err := f.svc.Issue(ctx, asset.ID, f.employee.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("issue from RECEIVED: %v", err)
	}
	if _, err := f.svc.Issue(ctx, asset.ID, f.admin.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("issue from ISSUED: expected invalid transition, got %v", err)
	}
	if _, err := f.svc.Return(ctx, asset.ID, f.office.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("return: %v", err)
	}
	if _, err := f.svc.Issue(ctx, asset.ID, f.admin.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("issue from RETURNED: %v", err)
	}
}

func TestReturnClearsOwnerAndSetsLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	if _, err := f.svc.Return(ctx, asset.ID, f.office.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("return from RECEIVED: expected invalid transition, got %v", err)
	}

	if _, err := f.svc.Issue(ctx, asset.ID, f.employee.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("issue: %v", err)
	}
	returned, err := f.svc.Return(ctx, asset.ID, f.office.ID, f.admin.ID, nil)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.CurrentStatus != domain.StatusReturned {
		t.Fatalf("expected RETURNED, got %s", returned.CurrentStatus)
	}
	if returned.CurrentOwnerID != nil {
		t.Fatalf("return must clear the owner")
	}
	if returned.CurrentLocationID == nil || *returned.CurrentLocationID != f.office.ID {
		t.Fatalf("return must set the stock location")
	}

	events, err := f.svc.ListTimeline(ctx, asset.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	last := events[len(events)-1]
	if last.FromOwnerID == nil || *last.FromOwnerID != f.employee.ID {
		t.Fatalf("return event should record the previous owner")
	}
	if last.ToOwnerID != nil {
		t.Fatalf("return event should have no new owner")
	}
}

func TestDisposeRequiresReasonBeforeAnyLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Asset 999 does not exist, but the blank reason must win.
	if _, err := f.svc.Dispose(ctx, 999, f.admin.ID, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank reason: expected validation error, got %v", err)
	}
	if _, err := f.svc.Dispose(ctx, 999, f.admin.ID, "broken"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing asset with reason: expected not found, got %v", err)
	}
}

func TestDisposeIsTerminalAndKeepsLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	disposed, err := f.svc.Dispose(ctx, asset.ID, f.admin.ID, "screen cracked beyond repair")
	if err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if disposed.CurrentStatus != domain.StatusDisposed {
		t.Fatalf("expected DISPOSED, got %s", disposed.CurrentStatus)
	}
	if disposed.CurrentOwnerID != nil {
		t.Fatalf("disposed asset must have no owner")
	}
	if disposed.CurrentLocationID == nil || *disposed.CurrentLocationID != f.warehouse.ID {
		t.Fatalf("dispose must keep the last location")
	}

	if _, err := f.svc.Issue(ctx, asset.ID, f.employee.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("issue after dispose: expected invalid transition, got %v", err)
	}
	if _, err := f.svc.Return(ctx, asset.ID, f.office.ID, f.admin.ID, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("return after dispose: expected invalid transition, got %v", err)
	}
	if _, err := f.svc.Dispose(ctx, asset.ID, f.admin.ID, "again"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("dispose after dispose: expected invalid transition, got %v", err)
	}
}

func TestDisposeFromIssuedIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	if _, err := f.svc.Issue(ctx, asset.ID, f.employee.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.svc.Dispose(ctx, asset.ID, f.admin.ID, "lost"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("dispose from ISSUED: expected invalid transition, got %v", err)
	}
}

func TestTimelineGrowsByOnePerTransitionWithAscendingIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	steps := []func() error{
		func() error { _, err := f.svc.Issue(ctx, asset.ID, f.employee.ID, f.admin.ID, nil); return err },
		func() error { _, err := f.svc.Return(ctx, asset.ID, f.office.ID, f.admin.ID, nil); return err },
		func() error { _, err := f.svc.Issue(ctx, asset.ID, f.admin.ID, f.admin.ID, nil); return err },
		func() error { _, err := f.svc.Return(ctx, asset.ID, f.warehouse.ID, f.admin.ID, nil); return err },
		func() error { _, err := f.svc.Dispose(ctx, asset.ID, f.admin.ID, "end of life"); return err },
	}

	prevLen := 1
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		events, err := f.svc.ListTimeline(ctx, asset.ID)
		if err != nil {
			t.Fatalf("timeline: %v", err)
		}
		if len(events) != prevLen+1 {
			t.Fatalf("step %d: expected %d events, got %d", i, prevLen+1, len(events))
		}
		prevLen = len(events)

		current, err := f.svc.GetAsset(ctx, asset.ID)
		if err != nil {
			t.Fatalf("get asset: %v", err)
		}
		if events[len(events)-1].ToStatus != current.CurrentStatus {
			t.Fatalf("step %d: last event to_status should match current status", i)
		}
		for j := 1; j < len(events); j++ {
			if events[j].ID <= events[j-1].ID {
				t.Fatalf("step %d: event ids must ascend", i)
			}
		}
	}
}

func TestReadsDoNotAppendEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset := f.receiveOne(t, ctx)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.GetAsset(ctx, asset.ID); err != nil {
			t.Fatalf("get asset: %v", err)
		}
		if _, err := f.svc.ListAssets(ctx); err != nil {
			t.Fatalf("list assets: %v", err)
		}
		if _, err := f.svc.ListTimeline(ctx, asset.ID); err != nil {
			t.Fatalf("timeline: %v", err)
		}
	}

	events, err := f.svc.ListTimeline(ctx, asset.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the birth event, got %d", len(events))
	}
}

func TestTimelineOfMissingAssetIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.ListTimeline(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPurchaseOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.CreatePurchaseOrder(ctx, domain.PurchaseOrder{RequestedByID: f.admin.ID, PurchasedAt: time.Now().UTC()}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing reason: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreatePurchaseOrder(ctx, domain.PurchaseOrder{RequestedByID: f.admin.ID, PurchaseReason: "spares"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing date: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreatePurchaseOrder(ctx, domain.PurchaseOrder{RequestedByID: 999, PurchasedAt: time.Now().UTC(), PurchaseReason: "spares"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing requester: expected not found, got %v", err)
	}

	if _, err := f.svc.AddPurchaseOrderLine(ctx, domain.PurchaseOrderLine{POID: f.line.POID, ItemCategory: " ", QtyOrdered: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank category: expected validation error, got %v", err)
	}
	if _, err := f.svc.AddPurchaseOrderLine(ctx, domain.PurchaseOrderLine{POID: f.line.POID, ItemCategory: "MOUSE", QtyOrdered: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("zero qty: expected validation error, got %v", err)
	}
	if _, err := f.svc.AddPurchaseOrderLine(ctx, domain.PurchaseOrderLine{POID: 999, ItemCategory: "MOUSE", QtyOrdered: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing po: expected not found, got %v", err)
	}
}

func TestCreateUserValidatesRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.CreateUser(ctx, "New Person", "SUPERVISOR"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown role: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, "  ", domain.RoleUser); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank name: expected validation error, got %v", err)
	}
	u, err := f.svc.CreateUser(ctx, "  Padded Name  ", domain.RoleAudit)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.DisplayName != "Padded Name" {
		t.Fatalf("expected trimmed name, got %q", u.DisplayName)
	}
}

func TestBootstrapSeedsOnceAndOnlyOnce(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "assetledger_test.db")

	db, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	svc := NewLedgerService(sqlite.NewLedgerRepository(db))

	if err := svc.Bootstrap(ctx, "First Admin"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].DisplayName != "First Admin" || users[0].Role != domain.RoleIT {
		t.Fatalf("unexpected bootstrap users: %+v", users)
	}
	locations, err := svc.ListLocations(ctx)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 3 {
		t.Fatalf("expected 3 seed locations, got %d", len(locations))
	}

	if err := svc.Bootstrap(ctx, "Second Admin"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	users, _ = svc.ListUsers(ctx)
	if len(users) != 1 {
		t.Fatalf("bootstrap must be a no-op once users exist, got %d users", len(users))
	}
}

func TestFullLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assets, err := f.svc.Receive(ctx, f.line.ID, 2, f.warehouse.ID, f.admin.ID, nil)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	first := assets[0]
	if _, err := f.svc.Issue(ctx, first.ID, f.employee.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.svc.Return(ctx, first.ID, f.warehouse.ID, f.admin.ID, nil); err != nil {
		t.Fatalf("return: %v", err)
	}
	if _, err := f.svc.Dispose(ctx, first.ID, f.admin.ID, "water damage"); err != nil {
		t.Fatalf("dispose: %v", err)
	}

	events, err := f.svc.ListTimeline(ctx, first.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	want := []domain.AssetStatus{domain.StatusReceived, domain.StatusIssued, domain.StatusReturned, domain.StatusDisposed}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e.ToStatus != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], e.ToStatus)
		}
	}

	// The second asset is untouched by its sibling's lifecycle.
	second, err := f.svc.GetAsset(ctx, assets[1].ID)
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if second.CurrentStatus != domain.StatusReceived {
		t.Fatalf("second asset should still be RECEIVED, got %s", second.CurrentStatus)
	}
	secondEvents, err := f.svc.ListTimeline(ctx, second.ID)
	if err != nil {
		t.Fatalf("second timeline: %v", err)
	}
	if len(secondEvents) != 1 {
		t.Fatalf("second asset should have only its birth event, got %d", len(secondEvents))
	}
}
