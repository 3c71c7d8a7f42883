package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/restobill-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса ресторанных заказов.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/staff/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/menu", h.GetMenu)

			r.Post("/tables/{number}/order", h.SelectTable)

			r.Post("/orders/{id}/items", h.UpdateQuantity)
			r.Post("/orders/{id}/confirm", h.ConfirmOrder)
			r.Post("/orders/{id}/pay", h.PayBill)
			r.Delete("/orders/{id}", h.ResetOrder)
			r.Get("/orders", h.ListOrders)

			r.Get("/reports/revenue", h.Revenue)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
