package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/restobill-system/internal/catalog"
	"github.com/mmeshcher/restobill-system/internal/model"
)

type stubCatalog struct {
	prices map[string]int64
}

func (c *stubCatalog) Get(id string) (model.MenuItem, error) {
	price, ok := c.prices[id]
	if !ok {
		return model.MenuItem{}, catalog.ErrItemNotFound
	}
	return model.MenuItem{ID: id, Name: id, PricePaise: price, Category: model.CategoryMainCourse}, nil
}

type stubStore struct {
	saves   []*model.Snapshot
	saveErr error

	loadSnap *model.Snapshot
	loadErr  error
}

func (s *stubStore) Load(ctx context.Context) (*model.Snapshot, error) {
	return s.loadSnap, s.loadErr
}

func (s *stubStore) Save(ctx context.Context, snap *model.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, snap)
	return nil
}

func newTestLedger(store Store) *Ledger {
	cat := &stubCatalog{prices: map[string]int64{
		"m1": 18000,
		"m2": 20000,
	}}
	l := New(cat, store, 500, zap.NewNop())

	// Детерминированные, строго возрастающие метки времени.
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	step := 0
	l.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	return l
}

func TestSelectTable_CreatesDraft(t *testing.T) {
	l := newTestLedger(nil)

	o, err := l.SelectTable(context.Background(), 5)
	if err != nil {
		t.Fatalf("SelectTable error: %v", err)
	}

	if o.ID == "" {
		t.Fatalf("order id must be generated")
	}
	if o.TableNumber != 5 {
		t.Fatalf("tableNumber = %d, want 5", o.TableNumber)
	}
	if o.Status != model.OrderStatusDraft {
		t.Fatalf("status = %s, want DRAFT", o.Status)
	}
	if len(o.Lines) != 0 {
		t.Fatalf("new order must have no lines, got %d", len(o.Lines))
	}
	if !o.UpdatedAt.Equal(o.CreatedAt) {
		t.Fatalf("createdAt and updatedAt must match on creation")
	}
}

func TestSelectTable_ReturnsExistingCurrentOrder(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	first, err := l.SelectTable(ctx, 5)
	if err != nil {
		t.Fatalf("SelectTable error: %v", err)
	}

	again, err := l.SelectTable(ctx, 5)
	if err != nil {
		t.Fatalf("SelectTable error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same draft order, got %s and %s", first.ID, again.ID)
	}

	if _, err := l.UpdateQuantity(ctx, first.ID, "m1", 1); err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if _, err := l.ConfirmOrder(ctx, first.ID); err != nil {
		t.Fatalf("ConfirmOrder error: %v", err)
	}

	active, err := l.SelectTable(ctx, 5)
	if err != nil {
		t.Fatalf("SelectTable error: %v", err)
	}
	if active.ID != first.ID || active.Status != model.OrderStatusActive {
		t.Fatalf("expected the active order back, got %+v", active)
	}
}

func TestSelectTable_NewOrderAfterPayment(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	first, _ := l.SelectTable(ctx, 3)
	_, _ = l.UpdateQuantity(ctx, first.ID, "m1", 1)
	_, _ = l.ConfirmOrder(ctx, first.ID)
	if _, _, err := l.PayBill(ctx, first.ID); err != nil {
		t.Fatalf("PayBill error: %v", err)
	}

	second, err := l.SelectTable(ctx, 3)
	if err != nil {
		t.Fatalf("SelectTable error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("completed order must not be returned as current")
	}
	if second.Status != model.OrderStatusDraft {
		t.Fatalf("status = %s, want DRAFT", second.Status)
	}
}

func TestSelectTable_RejectsNonPositiveTable(t *testing.T) {
	l := newTestLedger(nil)

	if _, err := l.SelectTable(context.Background(), 0); err == nil {
		t.Fatalf("expected error for table 0")
	}
	if _, err := l.SelectTable(context.Background(), -3); err == nil {
		t.Fatalf("expected error for negative table")
	}
}

func TestUpdateQuantity_SumOfDeltas(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)

	deltas := []int{2, 3, -1, 1}
	var last model.Order
	var err error
	for _, d := range deltas {
		last, err = l.UpdateQuantity(ctx, o.ID, "m1", d)
		if err != nil {
			t.Fatalf("UpdateQuantity(%d) error: %v", d, err)
		}
	}

	if len(last.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(last.Lines))
	}
	if last.Lines[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5 (sum of deltas)", last.Lines[0].Quantity)
	}
}

func TestUpdateQuantity_RemovesLineWhenCandidateNonPositive(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	if _, err := l.UpdateQuantity(ctx, o.ID, "m1", 2); err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}

	// 2 - 5 = -3 <= 0: строка удаляется, отрицательное количество не сохраняется.
	res, err := l.UpdateQuantity(ctx, o.ID, "m1", -5)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("expected line removed, got %+v", res.Lines)
	}
}

func TestUpdateQuantity_DecrementOnAbsentLineIsNoop(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)

	res, err := l.UpdateQuantity(ctx, o.ID, "m1", -1)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("expected no lines, got %+v", res.Lines)
	}
}

func TestUpdateQuantity_UnknownOrder(t *testing.T) {
	l := newTestLedger(nil)

	_, err := l.UpdateQuantity(context.Background(), "no-such-order", "m1", 1)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateQuantity_UnknownItemOnFirstAdd(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)

	_, err := l.UpdateQuantity(ctx, o.ID, "no-such-item", 1)
	if !errors.Is(err, catalog.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	// Состояние заказа не изменилось.
	current, _ := l.SelectTable(ctx, 1)
	if len(current.Lines) != 0 {
		t.Fatalf("failed add must not mutate the order, got %+v", current.Lines)
	}
}

func TestUpdateQuantity_CompletedOrderImmutable(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
	_, _ = l.ConfirmOrder(ctx, o.ID)
	_, _, _ = l.PayBill(ctx, o.ID)

	_, err := l.UpdateQuantity(ctx, o.ID, "m1", 1)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestConfirmOrder_EmptyFails(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)

	_, err := l.ConfirmOrder(ctx, o.ID)
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}

	current, _ := l.SelectTable(ctx, 1)
	if current.Status != model.OrderStatusDraft {
		t.Fatalf("failed confirm must leave the draft untouched, got %s", current.Status)
	}
}

func TestConfirmOrder_InvalidStates(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
	if _, err := l.ConfirmOrder(ctx, o.ID); err != nil {
		t.Fatalf("ConfirmOrder error: %v", err)
	}

	// Повторное подтверждение активного заказа запрещено.
	if _, err := l.ConfirmOrder(ctx, o.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for active order, got %v", err)
	}

	_, _, _ = l.PayBill(ctx, o.ID)
	if _, err := l.ConfirmOrder(ctx, o.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for completed order, got %v", err)
	}
}

func TestPayBill_Scenario(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	// Сценарий из материалов продукта: стол 5, две порции m1 по 180 рупий,
	// налог 5% -> 360 / 18 / 378 рупий.
	o, err := l.SelectTable(ctx, 5)
	require.NoError(t, err)

	_, err = l.UpdateQuantity(ctx, o.ID, "m1", 2)
	require.NoError(t, err)

	draft, err := l.SelectTable(ctx, 5)
	require.NoError(t, err)

	draftTotals, err := l.ComputeTotals(draft)
	require.NoError(t, err)
	assert.Equal(t, int64(36000), draftTotals.SubtotalPaise)
	assert.Equal(t, int64(1800), draftTotals.TaxPaise)
	assert.Equal(t, int64(37800), draftTotals.TotalPaise)

	_, err = l.ConfirmOrder(ctx, o.ID)
	require.NoError(t, err)

	paid, totals, err := l.PayBill(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCompleted, paid.Status)
	require.NotNil(t, paid.CompletedAt)
	assert.Equal(t, draftTotals, totals)

	// Итоги чека зафиксированы в момент оплаты и не зависят от позднейших
	// изменений цен в каталоге.
	l.catalog.(*stubCatalog).prices["m1"] = 99900
	assert.Equal(t, int64(37800), totals.TotalPaise)
}

func TestPayBill_DraftFails(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)

	_, _, err := l.PayBill(ctx, o.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for draft order, got %v", err)
	}
}

func TestPayBill_EmptiedActiveFails(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
	_, _ = l.ConfirmOrder(ctx, o.ID)

	// Из активного заказа можно убрать все позиции; оплатить его после этого нельзя.
	res, err := l.UpdateQuantity(ctx, o.ID, "m1", -1)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("expected empty order, got %+v", res.Lines)
	}

	_, _, err = l.PayBill(ctx, o.ID)
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
}

func TestResetOrder_DraftAndActive(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	draft, _ := l.SelectTable(ctx, 1)
	if err := l.ResetOrder(ctx, draft.ID); err != nil {
		t.Fatalf("ResetOrder draft error: %v", err)
	}

	active, _ := l.SelectTable(ctx, 2)
	_, _ = l.UpdateQuantity(ctx, active.ID, "m1", 1)
	_, _ = l.ConfirmOrder(ctx, active.ID)
	if err := l.ResetOrder(ctx, active.ID); err != nil {
		t.Fatalf("ResetOrder active error: %v", err)
	}

	drafts, _ := l.ListByStatus(model.OrderStatusDraft)
	actives, _ := l.ListByStatus(model.OrderStatusActive)
	if len(drafts) != 0 || len(actives) != 0 {
		t.Fatalf("reset orders must be removed, got %d drafts, %d actives", len(drafts), len(actives))
	}
}

func TestResetOrder_CompletedFails(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
	_, _ = l.ConfirmOrder(ctx, o.ID)
	_, _, _ = l.PayBill(ctx, o.ID)

	err := l.ResetOrder(ctx, o.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	completed, _ := l.ListByStatus(model.OrderStatusCompleted)
	if len(completed) != 1 {
		t.Fatalf("completed order must survive reset attempt")
	}
}

func TestListByStatus_UnknownStatus(t *testing.T) {
	l := newTestLedger(nil)

	if _, err := l.ListByStatus("SERVED"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestListByStatus_CompletedSortedByCompletedAt(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	for _, table := range []int{7, 3, 9} {
		o, _ := l.SelectTable(ctx, table)
		_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
		_, _ = l.ConfirmOrder(ctx, o.ID)
		_, _, _ = l.PayBill(ctx, o.ID)
	}

	completed, err := l.ListByStatus(model.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("ListByStatus error: %v", err)
	}
	if len(completed) != 3 {
		t.Fatalf("completed = %d, want 3", len(completed))
	}
	for i := 1; i < len(completed); i++ {
		if completed[i].CompletedAt.Before(*completed[i-1].CompletedAt) {
			t.Fatalf("completed orders must be sorted by completedAt ascending")
		}
	}
	// Порядок завершения: 7, 3, 9.
	if completed[0].TableNumber != 7 || completed[1].TableNumber != 3 || completed[2].TableNumber != 9 {
		t.Fatalf("unexpected completion order: %+v", completed)
	}
}

func TestCurrentOrderUniquePerTable(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := l.SelectTable(ctx, 4); err != nil {
			t.Fatalf("SelectTable error: %v", err)
		}
	}

	drafts, _ := l.ListByStatus(model.OrderStatusDraft)
	actives, _ := l.ListByStatus(model.OrderStatusActive)

	seen := make(map[int]bool)
	for _, o := range append(drafts, actives...) {
		if seen[o.TableNumber] {
			t.Fatalf("two current orders for table %d", o.TableNumber)
		}
		seen[o.TableNumber] = true
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 2)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m2", 1)
	current, _ := l.SelectTable(ctx, 1)

	first, err := l.ComputeTotals(current)
	if err != nil {
		t.Fatalf("ComputeTotals error: %v", err)
	}
	second, err := l.ComputeTotals(current)
	if err != nil {
		t.Fatalf("ComputeTotals error: %v", err)
	}
	if first != second {
		t.Fatalf("ComputeTotals not idempotent: %+v vs %+v", first, second)
	}
	if first.SubtotalPaise != 56000 {
		t.Fatalf("subtotal = %d, want 56000", first.SubtotalPaise)
	}
	if first.TotalPaise != first.SubtotalPaise+first.TaxPaise {
		t.Fatalf("total must equal subtotal+tax")
	}
}

func TestTaxOf_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		subtotal int64
		rateBP   int64
		want     int64
	}{
		{subtotal: 36000, rateBP: 500, want: 1800},
		{subtotal: 10, rateBP: 500, want: 1},   // 0.5 пайсы -> 1
		{subtotal: 9, rateBP: 500, want: 0},    // 0.45 пайсы -> 0
		{subtotal: 0, rateBP: 500, want: 0},
		{subtotal: 12345, rateBP: 500, want: 617}, // 617.25 -> 617
	}

	for _, tt := range tests {
		if got := taxOf(tt.subtotal, tt.rateBP); got != tt.want {
			t.Fatalf("taxOf(%d, %d) = %d, want %d", tt.subtotal, tt.rateBP, got, tt.want)
		}
	}
}

func TestSplitTax_HalvesSumExactly(t *testing.T) {
	for _, tax := range []int64{0, 1, 2, 1800, 1801} {
		cgst, sgst := SplitTax(tax)
		if cgst+sgst != tax {
			t.Fatalf("SplitTax(%d): %d + %d != %d", tax, cgst, sgst, tax)
		}
		if sgst-cgst > 1 || cgst > sgst {
			t.Fatalf("SplitTax(%d): halves %d/%d not balanced", tax, cgst, sgst)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := &stubStore{}
	l := newTestLedger(store)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 5)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 2)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m2", 1)
	_, _ = l.ConfirmOrder(ctx, o.ID)
	_, _, _ = l.PayBill(ctx, o.ID)
	_, _ = l.SelectTable(ctx, 6)

	require.NotEmpty(t, store.saves)
	last := store.saves[len(store.saves)-1]

	// Снимок переживает сериализацию в JSON без потерь.
	data, err := json.Marshal(last)
	require.NoError(t, err)

	var decoded model.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := newTestLedger(&stubStore{loadSnap: &decoded})
	restored.Restore(ctx)

	for _, status := range []model.OrderStatus{model.OrderStatusDraft, model.OrderStatusActive, model.OrderStatusCompleted} {
		want, err := l.ListByStatus(status)
		require.NoError(t, err)
		got, err := restored.ListByStatus(status)
		require.NoError(t, err)

		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].TableNumber, got[i].TableNumber)
			assert.Equal(t, want[i].Lines, got[i].Lines)
			assert.Equal(t, want[i].Status, got[i].Status)
			assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
			assert.True(t, want[i].UpdatedAt.Equal(got[i].UpdatedAt))

			if want[i].CompletedAt == nil {
				assert.Nil(t, got[i].CompletedAt)
			} else {
				require.NotNil(t, got[i].CompletedAt)
				assert.True(t, want[i].CompletedAt.Equal(*got[i].CompletedAt))
			}
		}
	}
}

func TestRestore_IgnoresBrokenSnapshot(t *testing.T) {
	store := &stubStore{loadErr: errors.New("corrupted")}
	l := newTestLedger(store)

	l.Restore(context.Background())

	drafts, _ := l.ListByStatus(model.OrderStatusDraft)
	if len(drafts) != 0 {
		t.Fatalf("broken snapshot must yield fresh ledger")
	}
}

func TestRestore_SkipsInvalidOrders(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	snap := &model.Snapshot{Orders: []model.Order{
		{ID: "ok", TableNumber: 1, Status: model.OrderStatusDraft, CreatedAt: now, UpdatedAt: now,
			Lines: []model.OrderLine{{MenuItemID: "m1", Quantity: 2}}},
		{ID: "", TableNumber: 2, Status: model.OrderStatusDraft, CreatedAt: now, UpdatedAt: now},
		{ID: "bad-qty", TableNumber: 3, Status: model.OrderStatusDraft, CreatedAt: now, UpdatedAt: now,
			Lines: []model.OrderLine{{MenuItemID: "m1", Quantity: 0}}},
		{ID: "dup-table", TableNumber: 1, Status: model.OrderStatusActive, CreatedAt: now, UpdatedAt: now,
			Lines: []model.OrderLine{{MenuItemID: "m1", Quantity: 1}}},
		{ID: "bad-status", TableNumber: 4, Status: "SERVED", CreatedAt: now, UpdatedAt: now},
	}}

	l := newTestLedger(&stubStore{loadSnap: snap})
	l.Restore(context.Background())

	drafts, _ := l.ListByStatus(model.OrderStatusDraft)
	actives, _ := l.ListByStatus(model.OrderStatusActive)
	if len(drafts) != 1 || drafts[0].ID != "ok" {
		t.Fatalf("expected only the valid draft, got %+v", drafts)
	}
	if len(actives) != 0 {
		t.Fatalf("duplicate current order for table must be skipped, got %+v", actives)
	}
}

func TestPersistFailure_DoesNotRollback(t *testing.T) {
	store := &stubStore{saveErr: errors.New("disk full")}
	l := newTestLedger(store)
	ctx := context.Background()

	o, err := l.SelectTable(ctx, 5)
	if err != nil {
		t.Fatalf("SelectTable error: %v", err)
	}

	res, err := l.UpdateQuantity(ctx, o.ID, "m1", 3)
	if err != nil {
		t.Fatalf("mutation must not fail on persistence error: %v", err)
	}
	if len(res.Lines) != 1 || res.Lines[0].Quantity != 3 {
		t.Fatalf("in-memory state must keep the mutation, got %+v", res.Lines)
	}
}

func TestPersist_SavesInMutationOrder(t *testing.T) {
	store := &stubStore{}
	l := newTestLedger(store)
	ctx := context.Background()

	o, _ := l.SelectTable(ctx, 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
	_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)

	require.Len(t, store.saves, 3)

	qty := func(snap *model.Snapshot) int {
		if len(snap.Orders) == 0 || len(snap.Orders[0].Lines) == 0 {
			return 0
		}
		return snap.Orders[0].Lines[0].Quantity
	}

	assert.Equal(t, 0, qty(store.saves[0]))
	assert.Equal(t, 1, qty(store.saves[1]))
	assert.Equal(t, 2, qty(store.saves[2]))
}

func TestRevenueByDay(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)
	clock := []time.Time{day1, day1, day1, day1, day2, day2, day2, day2}
	i := 0
	l.now = func() time.Time {
		t := clock[i%len(clock)]
		i++
		return t.Add(time.Duration(i) * time.Second)
	}

	for _, table := range []int{1, 2} {
		o, _ := l.SelectTable(ctx, table)
		_, _ = l.UpdateQuantity(ctx, o.ID, "m1", 1)
		_, _ = l.ConfirmOrder(ctx, o.ID)
		_, _, err := l.PayBill(ctx, o.ID)
		if err != nil {
			t.Fatalf("PayBill error: %v", err)
		}
	}

	rev, err := l.RevenueByDay()
	if err != nil {
		t.Fatalf("RevenueByDay error: %v", err)
	}
	if len(rev) != 2 {
		t.Fatalf("days = %d, want 2: %+v", len(rev), rev)
	}
	if rev[0].Date != "2026-08-29" || rev[1].Date != "2026-08-30" {
		t.Fatalf("days must be sorted ascending: %+v", rev)
	}
	// 18000 + 5% = 18900 пайс за каждый день.
	if rev[0].RevenuePaise != 18900 || rev[1].RevenuePaise != 18900 {
		t.Fatalf("unexpected revenue: %+v", rev)
	}
}
