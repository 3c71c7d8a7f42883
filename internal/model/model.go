// Package model содержит доменные сущности сервиса ресторанных заказов.
package model

import "time"

// MenuCategory описывает раздел меню, к которому относится позиция.
type MenuCategory string

const (
	CategoryStarters   MenuCategory = "Starters"
	CategoryMainCourse MenuCategory = "Main Course"
	CategoryBreads     MenuCategory = "Breads"
	CategoryDesserts   MenuCategory = "Desserts"
	CategoryBeverages  MenuCategory = "Beverages"
)

// MenuItem представляет позицию меню. Цена хранится в пайсах (минорных единицах рупии).
type MenuItem struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	PricePaise int64        `json:"price_paise"`
	Category   MenuCategory `json:"category"`
}

// OrderStatus описывает статус заказа за столом.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// OrderLine описывает одну позицию заказа. Количество всегда строго положительно:
// строка с нулевым или отрицательным количеством удаляется из заказа целиком.
type OrderLine struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// Order описывает заказ за столом и его жизненный цикл.
type Order struct {
	ID          string      `json:"id"`
	TableNumber int         `json:"table_number"`
	Lines       []OrderLine `json:"lines"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Clone возвращает глубокую копию заказа, независимую от оригинала.
func (o Order) Clone() Order {
	c := o
	c.Lines = make([]OrderLine, len(o.Lines))
	copy(c.Lines, o.Lines)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

// Totals содержит денежные итоги заказа в пайсах.
type Totals struct {
	SubtotalPaise int64 `json:"subtotal_paise"`
	TaxPaise      int64 `json:"tax_paise"`
	TotalPaise    int64 `json:"total_paise"`
}

// Snapshot описывает сериализуемое состояние леджера целиком.
type Snapshot struct {
	Orders []Order `json:"orders"`
}
