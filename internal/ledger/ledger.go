// Package ledger реализует учёт заказов по столам: создание заказа при выборе
// стола, изменение количества позиций, подтверждение, оплату и историю
// завершённых заказов. Леджер владеет состоянием в памяти и после каждой
// мутации отправляет снимок в хранилище.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/restobill-system/internal/model"
)

// ErrOrderNotFound возвращается, если заказ с указанным идентификатором не найден.
var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidState возвращается при операции, запрещённой в текущем статусе заказа.
	ErrInvalidState = errors.New("operation not allowed in current order status")
	// ErrEmptyOrder возвращается при попытке подтвердить или оплатить заказ без позиций.
	ErrEmptyOrder = errors.New("order has no lines")
)

// Catalog описывает контракт меню, используемый леджером.
type Catalog interface {
	Get(id string) (model.MenuItem, error)
}

// Store описывает контракт хранилища снимков состояния леджера.
// Load возвращает (nil, nil), если снимка ещё нет.
type Store interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
}

// Ledger содержит авторитетное состояние заказов одного зала.
// Все операции сериализуются общим мьютексом, поэтому сохранение снимков
// происходит строго в порядке применения мутаций.
type Ledger struct {
	mu        sync.Mutex
	orders    map[string]model.Order
	catalog   Catalog
	store     Store
	logger    *zap.Logger
	taxRateBP int64

	now func() time.Time
}

// New создаёт леджер с указанным каталогом, хранилищем снимков и налоговой
// ставкой в базисных пунктах. Хранилище может быть nil — тогда состояние
// живёт только в памяти процесса.
func New(catalog Catalog, store Store, taxRateBP int64, logger *zap.Logger) *Ledger {
	return &Ledger{
		orders:    make(map[string]model.Order),
		catalog:   catalog,
		store:     store,
		logger:    logger,
		taxRateBP: taxRateBP,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Restore загружает снимок из хранилища и восстанавливает состояние леджера.
// Отсутствующий или повреждённый снимок означает пустой леджер: восстановление
// никогда не завершается ошибкой.
func (l *Ledger) Restore(ctx context.Context) {
	if l.store == nil {
		return
	}

	snap, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warn("snapshot load failed, starting with empty ledger", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	currentByTable := make(map[int]bool)
	for _, o := range snap.Orders {
		if err := validateOrder(o); err != nil {
			l.logger.Warn("skipping invalid order in snapshot", zap.String("orderID", o.ID), zap.Error(err))
			continue
		}
		if o.Status != model.OrderStatusCompleted {
			if currentByTable[o.TableNumber] {
				l.logger.Warn("skipping duplicate current order for table",
					zap.String("orderID", o.ID), zap.Int("table", o.TableNumber))
				continue
			}
			currentByTable[o.TableNumber] = true
		}
		l.orders[o.ID] = o.Clone()
	}
}

func validateOrder(o model.Order) error {
	if o.ID == "" {
		return errors.New("empty order id")
	}
	if o.TableNumber <= 0 {
		return errors.New("non-positive table number")
	}
	switch o.Status {
	case model.OrderStatusDraft, model.OrderStatusActive, model.OrderStatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", o.Status)
	}
	if o.Status == model.OrderStatusCompleted && o.CompletedAt == nil {
		return errors.New("completed order without completedAt")
	}
	seen := make(map[string]bool, len(o.Lines))
	for _, ln := range o.Lines {
		if ln.Quantity <= 0 {
			return fmt.Errorf("non-positive quantity for %s", ln.MenuItemID)
		}
		if seen[ln.MenuItemID] {
			return fmt.Errorf("duplicate line for %s", ln.MenuItemID)
		}
		seen[ln.MenuItemID] = true
	}
	return nil
}

// SelectTable возвращает текущий (черновой или активный) заказ стола.
// Если такого заказа нет, создаётся новый черновик.
func (l *Ledger) SelectTable(ctx context.Context, tableNumber int) (model.Order, error) {
	if tableNumber <= 0 {
		return model.Order{}, fmt.Errorf("table number must be positive, got %d", tableNumber)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, o := range l.orders {
		if o.TableNumber == tableNumber && o.Status != model.OrderStatusCompleted {
			return o.Clone(), nil
		}
	}

	now := l.now()
	o := model.Order{
		ID:          uuid.NewString(),
		TableNumber: tableNumber,
		Lines:       []model.OrderLine{},
		Status:      model.OrderStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.orders[o.ID] = o

	l.persist(ctx)

	return o.Clone(), nil
}

// UpdateQuantity применяет относительное изменение количества позиции заказа.
// Итоговое количество ≤ 0 удаляет строку целиком. Завершённые заказы неизменяемы.
func (l *Ledger) UpdateQuantity(ctx context.Context, orderID, menuItemID string, delta int) (model.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.Status == model.OrderStatusCompleted {
		return model.Order{}, fmt.Errorf("%w: order %s is completed", ErrInvalidState, orderID)
	}

	idx := -1
	for i, ln := range o.Lines {
		if ln.MenuItemID == menuItemID {
			idx = i
			break
		}
	}

	current := 0
	if idx >= 0 {
		current = o.Lines[idx].Quantity
	}
	candidate := current + delta

	switch {
	case candidate <= 0:
		if idx >= 0 {
			o.Lines = append(o.Lines[:idx:idx], o.Lines[idx+1:]...)
		}
	case idx >= 0:
		lines := make([]model.OrderLine, len(o.Lines))
		copy(lines, o.Lines)
		lines[idx].Quantity = candidate
		o.Lines = lines
	default:
		// Новая строка появляется только для известной позиции меню.
		if _, err := l.catalog.Get(menuItemID); err != nil {
			return model.Order{}, err
		}
		o.Lines = append(o.Lines[:len(o.Lines):len(o.Lines)], model.OrderLine{
			MenuItemID: menuItemID,
			Quantity:   candidate,
		})
	}

	o.UpdatedAt = l.now()
	l.orders[orderID] = o

	l.persist(ctx)

	return o.Clone(), nil
}

// ConfirmOrder переводит черновик в активный заказ. Пустой заказ подтвердить нельзя.
func (l *Ledger) ConfirmOrder(ctx context.Context, orderID string) (model.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.Status != model.OrderStatusDraft {
		return model.Order{}, fmt.Errorf("%w: cannot confirm order in status %s", ErrInvalidState, o.Status)
	}
	if len(o.Lines) == 0 {
		return model.Order{}, fmt.Errorf("%w: %s", ErrEmptyOrder, orderID)
	}

	o.Status = model.OrderStatusActive
	o.UpdatedAt = l.now()
	l.orders[orderID] = o

	l.persist(ctx)

	return o.Clone(), nil
}

// PayBill завершает активный заказ и возвращает его вместе с итогами,
// зафиксированными в момент оплаты.
func (l *Ledger) PayBill(ctx context.Context, orderID string) (model.Order, model.Totals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return model.Order{}, model.Totals{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.Status != model.OrderStatusActive {
		return model.Order{}, model.Totals{}, fmt.Errorf("%w: cannot pay for order in status %s", ErrInvalidState, o.Status)
	}
	if len(o.Lines) == 0 {
		return model.Order{}, model.Totals{}, fmt.Errorf("%w: %s", ErrEmptyOrder, orderID)
	}

	totals, err := l.computeTotals(o)
	if err != nil {
		return model.Order{}, model.Totals{}, err
	}

	now := l.now()
	o.Status = model.OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	l.orders[orderID] = o

	l.persist(ctx)

	return o.Clone(), totals, nil
}

// ResetOrder удаляет черновой или активный заказ без оплаты.
// Завершённые заказы удалить нельзя.
func (l *Ledger) ResetOrder(ctx context.Context, orderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.Status == model.OrderStatusCompleted {
		return fmt.Errorf("%w: completed order cannot be reset", ErrInvalidState)
	}

	delete(l.orders, orderID)

	l.persist(ctx)

	return nil
}

// ListByStatus возвращает заказы с указанным статусом. Завершённые заказы
// отсортированы по времени завершения, остальные — по номеру стола.
func (l *Ledger) ListByStatus(status model.OrderStatus) ([]model.Order, error) {
	switch status {
	case model.OrderStatusDraft, model.OrderStatusActive, model.OrderStatusCompleted:
	default:
		return nil, fmt.Errorf("unknown order status %q", status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var res []model.Order
	for _, o := range l.orders {
		if o.Status == status {
			res = append(res, o.Clone())
		}
	}

	if status == model.OrderStatusCompleted {
		sort.Slice(res, func(i, j int) bool {
			return res[i].CompletedAt.Before(*res[j].CompletedAt)
		})
	} else {
		sort.Slice(res, func(i, j int) bool {
			return res[i].TableNumber < res[j].TableNumber
		})
	}

	return res, nil
}

// ComputeTotals вычисляет денежные итоги заказа. Чистая функция без побочных эффектов.
func (l *Ledger) ComputeTotals(o model.Order) (model.Totals, error) {
	return l.computeTotals(o)
}

func (l *Ledger) computeTotals(o model.Order) (model.Totals, error) {
	var subtotal int64
	for _, ln := range o.Lines {
		it, err := l.catalog.Get(ln.MenuItemID)
		if err != nil {
			return model.Totals{}, err
		}
		subtotal += it.PricePaise * int64(ln.Quantity)
	}

	tax := taxOf(subtotal, l.taxRateBP)

	return model.Totals{
		SubtotalPaise: subtotal,
		TaxPaise:      tax,
		TotalPaise:    subtotal + tax,
	}, nil
}

// taxOf считает налог в пайсах от суммы в пайсах по ставке в базисных пунктах,
// с округлением половины вверх.
func taxOf(subtotalPaise, rateBP int64) int64 {
	return (subtotalPaise*rateBP + 5000) / 10000
}

// SplitTax делит налог на равные половины CGST/SGST для чеков. При нечётной
// сумме лишний пайс уходит в SGST, чтобы половины всегда складывались в налог.
func SplitTax(taxPaise int64) (cgst, sgst int64) {
	cgst = taxPaise / 2
	return cgst, taxPaise - cgst
}

// DayRevenue содержит выручку за один календарный день.
type DayRevenue struct {
	Date         string `json:"date"`
	RevenuePaise int64  `json:"revenue_paise"`
}

// RevenueByDay возвращает суммы итогов завершённых заказов по дням
// (дата завершения в UTC), отсортированные по возрастанию даты.
func (l *Ledger) RevenueByDay() ([]DayRevenue, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byDay := make(map[string]int64)
	for _, o := range l.orders {
		if o.Status != model.OrderStatusCompleted {
			continue
		}
		totals, err := l.computeTotals(o)
		if err != nil {
			return nil, err
		}
		day := o.CompletedAt.UTC().Format("2006-01-02")
		byDay[day] += totals.TotalPaise
	}

	res := make([]DayRevenue, 0, len(byDay))
	for day, sum := range byDay {
		res = append(res, DayRevenue{Date: day, RevenuePaise: sum})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date < res[j].Date })

	return res, nil
}

// persist отправляет снимок текущего состояния в хранилище. Вызывается под
// мьютексом, поэтому снимки уходят в порядке применения мутаций. Ошибка
// сохранения не откатывает мутацию: состояние в памяти остаётся авторитетным.
func (l *Ledger) persist(ctx context.Context) {
	if l.store == nil {
		return
	}

	snap := l.snapshotLocked()
	if err := l.store.Save(ctx, snap); err != nil {
		l.logger.Warn("snapshot save failed, in-memory state remains authoritative", zap.Error(err))
	}
}

func (l *Ledger) snapshotLocked() *model.Snapshot {
	orders := make([]model.Order, 0, len(l.orders))
	for _, o := range l.orders {
		orders = append(orders, o.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return &model.Snapshot{Orders: orders}
}
