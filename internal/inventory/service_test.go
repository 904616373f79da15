package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type stubTransactor struct{}

func (stubTransactor) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubRepo struct {
	items   map[uuid.UUID]*models.InventoryItem
	history []models.InventoryHistoryEntry
	listed  []models.InventoryItem
}

func newStubRepo(items ...*models.InventoryItem) *stubRepo {
	repo := &stubRepo{items: map[uuid.UUID]*models.InventoryItem{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *stubRepo) CreateTx(tx *gorm.DB, item *models.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*models.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubRepo) UpdateQuantityTx(tx *gorm.DB, item *models.InventoryItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubRepo) InsertHistoryTx(tx *gorm.DB, entry *models.InventoryHistoryEntry) error {
	r.history = append(r.history, *entry)
	return nil
}

func (r *stubRepo) List(ctx context.Context, opts listQuery) ([]models.InventoryItem, error) {
	return r.listed, nil
}

func (r *stubRepo) ListHistory(ctx context.Context, opts historyQuery) ([]models.InventoryHistoryEntry, error) {
	return r.history, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (e *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

func (e *stubEmitter) typesEmitted() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.EventType
	}
	return out
}

func testActor() types.Actor {
	return types.Actor{UserID: uuid.New(), Name: "Maria Santos", Role: enums.UserRoleSupervisor}
}

func newTestService(t *testing.T, repo *stubRepo, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(stubTransactor{}, repo, emitter, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedItem(quantity string) *models.InventoryItem {
	qty := decimal.RequireFromString(quantity)
	return &models.InventoryItem{
		ID:          uuid.New(),
		ItemName:    "fish feed",
		Quantity:    qty,
		Unit:        "kg",
		Status:      DeriveStatus(qty),
		LastUpdated: time.Now().Add(-time.Hour),
		CreatedAt:   time.Now().Add(-24 * time.Hour),
	}
}

func TestApplyDeltaClampsAtZeroAndRecordsRawDelta(t *testing.T) {
	item := seedItem("5")
	repo := newStubRepo(item)
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	before := item.LastUpdated
	updated, err := svc.ApplyDelta(context.Background(), item.ID, decimal.RequireFromString("-8"), "spoiled batch", testActor())
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}

	if !updated.Quantity.IsZero() {
		t.Fatalf("expected quantity clamped to 0, got %s", updated.Quantity)
	}
	if updated.Status != enums.StockStatusOutOfStock {
		t.Fatalf("expected out_of_stock, got %s", updated.Status)
	}
	if !updated.LastUpdated.After(before) {
		t.Fatal("expected last_updated to be refreshed")
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(repo.history))
	}
	if !repo.history[0].Change.Equal(decimal.RequireFromString("-8")) {
		t.Fatalf("expected raw delta -8 in history, got %s", repo.history[0].Change)
	}
	if repo.history[0].Reason != "spoiled batch" {
		t.Fatalf("unexpected reason %q", repo.history[0].Reason)
	}

	emitted := emitter.typesEmitted()
	if len(emitted) != 2 || emitted[0] != enums.EventInventoryDeltaApplied || emitted[1] != enums.EventInventoryStockOut {
		t.Fatalf("unexpected events %v", emitted)
	}
}

func TestApplyDeltaEmitsLowStockAlertOnDegrade(t *testing.T) {
	item := seedItem("25")
	repo := newStubRepo(item)
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	updated, err := svc.ApplyDelta(context.Background(), item.ID, decimal.RequireFromString("-6"), "morning feeding", testActor())
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if updated.Status != enums.StockStatusLow {
		t.Fatalf("expected low, got %s", updated.Status)
	}

	emitted := emitter.typesEmitted()
	if len(emitted) != 2 || emitted[1] != enums.EventInventoryStockLow {
		t.Fatalf("unexpected events %v", emitted)
	}
}

func TestApplyDeltaImprovementEmitsNoAlert(t *testing.T) {
	item := seedItem("10")
	repo := newStubRepo(item)
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	updated, err := svc.ApplyDelta(context.Background(), item.ID, decimal.RequireFromString("15"), "restock delivery", testActor())
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if updated.Status != enums.StockStatusInStock {
		t.Fatalf("expected in_stock, got %s", updated.Status)
	}

	emitted := emitter.typesEmitted()
	if len(emitted) != 1 || emitted[0] != enums.EventInventoryDeltaApplied {
		t.Fatalf("unexpected events %v", emitted)
	}
}

func TestApplyDeltaUnknownItemIsNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubEmitter{})

	_, err := svc.ApplyDelta(context.Background(), uuid.New(), decimal.NewFromInt(1), "restock", testActor())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestApplyDeltaValidation(t *testing.T) {
	item := seedItem("5")
	svc := newTestService(t, newStubRepo(item), &stubEmitter{})

	cases := []struct {
		name string
		call func() error
	}{
		{"nil item id", func() error {
			_, err := svc.ApplyDelta(context.Background(), uuid.Nil, decimal.NewFromInt(1), "r", testActor())
			return err
		}},
		{"blank reason", func() error {
			_, err := svc.ApplyDelta(context.Background(), item.ID, decimal.NewFromInt(1), "   ", testActor())
			return err
		}},
		{"missing actor", func() error {
			_, err := svc.ApplyDelta(context.Background(), item.ID, decimal.NewFromInt(1), "r", types.Actor{})
			return err
		}},
	}
	for _, tc := range cases {
		typed := pkgerrors.As(tc.call())
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected VALIDATION_ERROR", tc.name)
		}
	}
}

func TestAddItemDerivesStatusAndEmits(t *testing.T) {
	repo := newStubRepo()
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	item, err := svc.AddItem(context.Background(), AddItemInput{
		Name:     "  oxygen tablets ",
		Quantity: decimal.RequireFromString("12"),
		Unit:     "boxes",
	}, testActor())
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.ItemName != "oxygen tablets" {
		t.Fatalf("expected trimmed name, got %q", item.ItemName)
	}
	if item.Status != enums.StockStatusLow {
		t.Fatalf("expected low, got %s", item.Status)
	}

	emitted := emitter.typesEmitted()
	if len(emitted) != 1 || emitted[0] != enums.EventInventoryItemAdded {
		t.Fatalf("unexpected events %v", emitted)
	}
}

func TestAddItemValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubEmitter{})

	cases := []AddItemInput{
		{Name: "", Quantity: decimal.NewFromInt(1), Unit: "kg"},
		{Name: "feed", Quantity: decimal.NewFromInt(1), Unit: ""},
		{Name: "feed", Quantity: decimal.NewFromInt(-1), Unit: "kg"},
	}
	for i, input := range cases {
		_, err := svc.AddItem(context.Background(), input, testActor())
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected VALIDATION_ERROR, got %v", i, err)
		}
	}
}

func TestConsumeManyContinuesPastFailures(t *testing.T) {
	present := seedItem("30")
	repo := newStubRepo(present)
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	missing := uuid.New()
	err := svc.ConsumeMany(context.Background(), []ConsumePair{
		{ItemID: missing, Quantity: decimal.NewFromInt(2)},
		{ItemID: present.ID, Quantity: decimal.NewFromInt(3)},
	}, "task completion", testActor())

	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if got := len(multierr.Errors(err)); got != 1 {
		t.Fatalf("expected 1 aggregated error, got %d", got)
	}
	if !repo.items[present.ID].Quantity.Equal(decimal.RequireFromString("27")) {
		t.Fatalf("expected remaining item deducted to 27, got %s", repo.items[present.ID].Quantity)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected one history entry for the successful deduction, got %d", len(repo.history))
	}
}

func TestConsumeManyRejectsNonPositiveQuantities(t *testing.T) {
	item := seedItem("30")
	svc := newTestService(t, newStubRepo(item), &stubEmitter{})

	err := svc.ConsumeMany(context.Background(), []ConsumePair{
		{ItemID: item.ID, Quantity: decimal.Zero},
	}, "task completion", testActor())
	if err == nil {
		t.Fatal("expected validation error for zero quantity")
	}
}

func TestListItemsRejectsBadStatusFilter(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubEmitter{})

	_, err := svc.ListItems(context.Background(), ListParams{Status: "plentiful"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
