// Package handler содержит HTTP-обработчики API сервиса ресторанных заказов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/restobill-system/internal/catalog"
	"github.com/mmeshcher/restobill-system/internal/ledger"
	"github.com/mmeshcher/restobill-system/internal/middleware"
	"github.com/mmeshcher/restobill-system/internal/model"
	"github.com/mmeshcher/restobill-system/internal/printer"
	"github.com/mmeshcher/restobill-system/internal/staff"
	"github.com/mmeshcher/restobill-system/internal/validation"
)

// Ledger определяет контракт леджера заказов, используемый HTTP-обработчиками.
type Ledger interface {
	SelectTable(ctx context.Context, tableNumber int) (model.Order, error)
	UpdateQuantity(ctx context.Context, orderID, menuItemID string, delta int) (model.Order, error)
	ConfirmOrder(ctx context.Context, orderID string) (model.Order, error)
	PayBill(ctx context.Context, orderID string) (model.Order, model.Totals, error)
	ResetOrder(ctx context.Context, orderID string) error
	ListByStatus(status model.OrderStatus) ([]model.Order, error)
	ComputeTotals(o model.Order) (model.Totals, error)
	RevenueByDay() ([]ledger.DayRevenue, error)
}

// Catalog определяет контракт меню, используемый HTTP-обработчиками.
type Catalog interface {
	Get(id string) (model.MenuItem, error)
	List() []model.MenuItem
}

// Handler реализует HTTP-обработчики API сервиса ресторанных заказов.
type Handler struct {
	ledger         Ledger
	catalog        Catalog
	roster         *staff.Roster
	dispatcher     *printer.Dispatcher
	branchID       string
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(l Ledger, cat Catalog, roster *staff.Roster, dispatcher *printer.Dispatcher, branchID string, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		ledger:         l,
		catalog:        cat,
		roster:         roster,
		dispatcher:     dispatcher,
		branchID:       branchID,
		logger:         logger,
		authMiddleware: auth,
	}
}

type loginRequest struct {
	ID string `json:"id"`
}

type loginResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Manager bool   `json:"manager"`
}

// Login аутентифицирует сотрудника по идентификатору из реестра и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	id := strings.ToUpper(strings.TrimSpace(req.ID))
	if !validation.IsValidStaffID(id) && !validation.IsValidManagerID(id) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	member, ok := h.roster.Find(id)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.authMiddleware.SetAuthCookie(w, member.ID)

	h.writeJSON(w, loginResponse{
		ID:      member.ID,
		Name:    member.Name,
		Manager: member.Manager,
	})
}

type menuItemResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// GetMenu возвращает все позиции меню.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	items := h.catalog.List()

	resp := make([]menuItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, menuItemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Price:    rupees(it.PricePaise),
			Category: string(it.Category),
		})
	}

	h.writeJSON(w, resp)
}

// SelectTable возвращает текущий заказ стола, создавая черновик при необходимости.
func (h *Handler) SelectTable(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || !validation.IsValidTableNumber(number) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.ledger.SelectTable(r.Context(), number)
	if err != nil {
		h.writeLedgerError(w, err, "select table")
		return
	}

	h.writeOrder(w, order)
}

type updateQuantityRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Delta      int    `json:"delta"`
}

// UpdateQuantity применяет относительное изменение количества позиции заказа.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.MenuItemID == "" || req.Delta == 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.ledger.UpdateQuantity(r.Context(), orderID, req.MenuItemID, req.Delta)
	if err != nil {
		h.writeLedgerError(w, err, "update quantity")
		return
	}

	h.writeOrder(w, order)
}

// ConfirmOrder переводит черновик в активный заказ.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.ledger.ConfirmOrder(r.Context(), orderID)
	if err != nil {
		h.writeLedgerError(w, err, "confirm order")
		return
	}

	h.writeOrder(w, order)
}

// PayBill завершает активный заказ и возвращает чек. Чек также ставится
// в очередь на печать.
func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, totals, err := h.ledger.PayBill(r.Context(), orderID)
	if err != nil {
		h.writeLedgerError(w, err, "pay bill")
		return
	}

	receipt := h.buildReceipt(order, totals)
	if h.dispatcher != nil {
		h.dispatcher.Enqueue(receipt)
	}

	h.writeJSON(w, receipt)
}

// ResetOrder удаляет черновой или активный заказ без оплаты.
func (h *Handler) ResetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	if err := h.ledger.ResetOrder(r.Context(), orderID); err != nil {
		h.writeLedgerError(w, err, "reset order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

var statusByName = map[string]model.OrderStatus{
	"draft":     model.OrderStatusDraft,
	"active":    model.OrderStatusActive,
	"completed": model.OrderStatusCompleted,
}

// ListOrders возвращает заказы с указанным статусом.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status, ok := statusByName[strings.ToLower(r.URL.Query().Get("status"))]
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	orders, err := h.ledger.ListByStatus(status)
	if err != nil {
		h.logger.Error("list orders error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		or, err := h.orderResponse(o)
		if err != nil {
			h.logger.Error("list orders error", zap.Error(err), zap.String("orderID", o.ID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp = append(resp, or)
	}

	h.writeJSON(w, resp)
}

type dayRevenueResponse struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// Revenue возвращает выручку по дням. Доступно только менеджерам.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	staffID, ok := middleware.GetStaffIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	member, ok := h.roster.Find(staffID)
	if !ok || !member.Manager {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	days, err := h.ledger.RevenueByDay()
	if err != nil {
		h.logger.Error("revenue report error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(days) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]dayRevenueResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, dayRevenueResponse{
			Date:    d.Date,
			Revenue: rupees(d.RevenuePaise),
		})
	}

	h.writeJSON(w, resp)
}

type orderLineResponse struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Total      float64 `json:"total"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	TableNumber int                 `json:"table_number"`
	Status      string              `json:"status"`
	Lines       []orderLineResponse `json:"lines"`
	Subtotal    float64             `json:"subtotal"`
	Tax         float64             `json:"tax"`
	Total       float64             `json:"total"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
	CompletedAt string              `json:"completed_at,omitempty"`
}

func (h *Handler) orderResponse(o model.Order) (orderResponse, error) {
	totals, err := h.ledger.ComputeTotals(o)
	if err != nil {
		return orderResponse{}, err
	}

	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, ln := range o.Lines {
		it, err := h.catalog.Get(ln.MenuItemID)
		if err != nil {
			return orderResponse{}, err
		}
		lines = append(lines, orderLineResponse{
			MenuItemID: ln.MenuItemID,
			Name:       it.Name,
			Quantity:   ln.Quantity,
			Price:      rupees(it.PricePaise),
			Total:      rupees(it.PricePaise * int64(ln.Quantity)),
		})
	}

	resp := orderResponse{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      string(o.Status),
		Lines:       lines,
		Subtotal:    rupees(totals.SubtotalPaise),
		Tax:         rupees(totals.TaxPaise),
		Total:       rupees(totals.TotalPaise),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
	if o.CompletedAt != nil {
		resp.CompletedAt = o.CompletedAt.Format(time.RFC3339)
	}

	return resp, nil
}

func (h *Handler) buildReceipt(o model.Order, totals model.Totals) printer.Receipt {
	lines := make([]printer.ReceiptLine, 0, len(o.Lines))
	for _, ln := range o.Lines {
		name := ln.MenuItemID
		var price int64
		if it, err := h.catalog.Get(ln.MenuItemID); err == nil {
			name = it.Name
			price = it.PricePaise
		}
		lines = append(lines, printer.ReceiptLine{
			Name:     name,
			Quantity: ln.Quantity,
			Price:    rupees(price),
			Total:    rupees(price * int64(ln.Quantity)),
		})
	}

	cgst, sgst := ledger.SplitTax(totals.TaxPaise)

	receipt := printer.Receipt{
		OrderID:      o.ID,
		BranchID:     h.branchID,
		TableNumber:  o.TableNumber,
		Lines:        lines,
		Subtotal:     rupees(totals.SubtotalPaise),
		CGST:         rupees(cgst),
		SGST:         rupees(sgst),
		Total:        rupees(totals.TotalPaise),
		TotalRounded: (totals.TotalPaise + 50) / 100,
	}
	if o.CompletedAt != nil {
		receipt.CompletedAt = *o.CompletedAt
	}

	return receipt
}

func (h *Handler) writeOrder(w http.ResponseWriter, o model.Order) {
	resp, err := h.orderResponse(o)
	if err != nil {
		h.logger.Error("build order response error", zap.Error(err), zap.String("orderID", o.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ledger.ErrOrderNotFound) || errors.Is(err, catalog.ErrItemNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvalidState):
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
	case errors.Is(err, ledger.ErrEmptyOrder):
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
	default:
		h.logger.Error(action+" error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func rupees(paise int64) float64 {
	return float64(paise) / 100
}
