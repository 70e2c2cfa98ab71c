package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/label"
	"github.com/plajta/depo-service/internal/service"
	"github.com/plajta/depo-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	FetchAll(ctx context.Context) (service.Snapshot, error)
	TrackOrder(ctx context.Context, id string) (entities.Order, error)
	Delete(ctx context.Context, id string) error
	Couriers(ctx context.Context) ([]entities.Courier, error)
}

type FormSubmitter interface {
	Submit(ctx context.Context, form service.OrderForm) (entities.Order, error)
}

type SessionReader interface {
	CurrentUser(r *http.Request) (entities.User, bool)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	form     FormSubmitter
	sessions SessionReader
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService, form FormSubmitter, sessions SessionReader) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
		form:     form,
		sessions: sessions,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Get("/track/{order_id}", h.TrackOrder)

	r.Route("/depo", func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/orders", h.ListOrders)
		r.Post("/orders", h.CreateOrder)
		r.Get("/orders/export", h.ExportOrders)
		r.Patch("/orders/{order_id}", h.UpdateOrder)
		r.Delete("/orders/{order_id}", h.DeleteOrder)
		r.Get("/orders/{order_id}/label", h.OrderLabel)

		r.Get("/couriers", h.ListCouriers)
	})
}

// ListOrders возвращает производный список заказов.
// @Summary      Список заказов консоли
// @Description  Фильтрация по подстроке, статусу и курьеру, сортировка по одному ключу, пагинация
// @Tags         orders
// @Param        search   query  string  false  "Подстрока поиска"
// @Param        status   query  string  false  "Фильтр по статусу"
// @Param        courier  query  string  false  "Фильтр по курьеру"
// @Param        sort     query  string  false  "Ключ сортировки"
// @Param        dir      query  string  false  "Направление сортировки (asc|desc)"
// @Success      200  {object}  OrderList
// @Failure      401  {object}  utils.ErrorResponse
// @Failure      502  {object}  utils.ErrorResponse
// @Router       /depo/orders [get]
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.svc.FetchAll(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	query := listQueryFromRequest(r)
	page := service.BuildListPage(snap.Orders, query)

	utils.WriteJSON(w, ListPageToJSON(page, snap.Couriers), http.StatusOK)
}

// CreateOrder создаёт заказ.
// @Summary      Создать заказ
// @Tags         orders
// @Accept       json
// @Param        order  body  OrderForm  true  "Поля заказа"
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      409  {object}  utils.ErrorResponse
// @Router       /depo/orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form OrderForm
	if err := utils.DecodeBody(r, &form); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.form.Submit(ctx, FormJSONToForm("", form))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// UpdateOrder редактирует заказ.
// @Summary      Изменить заказ
// @Tags         orders
// @Accept       json
// @Param        order_id  path  string     true  "Идентификатор заказа"
// @Param        order     body  OrderForm  true  "Поля заказа"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse
// @Failure      409  {object}  utils.ErrorResponse "Заказ изменён параллельно"
// @Router       /depo/orders/{order_id} [patch]
func (h *HTTPHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var form OrderForm
	if err := utils.DecodeBody(r, &form); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.form.Submit(ctx, FormJSONToForm(orderID, form))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// DeleteOrder удаляет заказ.
// @Summary      Удалить заказ
// @Tags         orders
// @Param        order_id  path  string  true  "Идентификатор заказа"
// @Success      204
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /depo/orders/{order_id} [delete]
func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.svc.Delete(ctx, orderID); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCouriers возвращает курьеров по алфавиту.
// @Summary      Список курьеров
// @Tags         couriers
// @Success      200  {array}  Courier
// @Router       /depo/couriers [get]
func (h *HTTPHandler) ListCouriers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	couriers, err := h.svc.Couriers(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	out := make([]Courier, 0, len(couriers))
	for _, c := range couriers {
		out = append(out, CourierEntityToJSON(c))
	}
	utils.WriteJSON(w, out, http.StatusOK)
}

// ExportOrders выгружает отфильтрованный список в CSV с именами курьеров.
// @Summary      Экспорт заказов в CSV
// @Tags         orders
// @Produce      text/csv
// @Router       /depo/orders/export [get]
func (h *HTTPHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.svc.FetchAll(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	query := listQueryFromRequest(r)
	query.Page, query.PerPage = 0, 0 // экспортируется весь отфильтрованный список
	page := service.BuildListPage(snap.Orders, query)

	courierNames := make(map[string]string, len(snap.Couriers))
	for _, c := range snap.Couriers {
		courierNames[c.ID] = c.Name
	}

	filename := fmt.Sprintf("orders_export_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	cw.Write([]string{"ID", "Customer Name", "Customer Address", "Customer Phone", "Customer Email", "Sender Address", "Courier", "Status"})
	for _, o := range page.Orders {
		cw.Write([]string{
			o.ID,
			o.CustomerName,
			o.CustomerAddress,
			o.CustomerTel,
			o.CustomerEmail,
			o.SenderAddress,
			courierNames[o.CourierID],
			string(o.Status),
		})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		h.logger.ErrorContext(ctx, "failed to write csv", slog.Any("error", err))
	}
}

// OrderLabel отдаёт печатную этикетку с QR-кодом посылки.
// @Summary      Этикетка заказа
// @Tags         orders
// @Produce      application/pdf
// @Param        order_id  path  string  true  "Идентификатор заказа"
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /depo/orders/{order_id}/label [get]
func (h *HTTPHandler) OrderLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	order, err := h.svc.TrackOrder(ctx, orderID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	pdf, err := label.Generate(label.Data{
		ID:      order.ID,
		Name:    order.CustomerName,
		Address: order.CustomerAddress,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate label", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Write(pdf)
}

// TrackOrder — публичный поиск посылки по идентификатору.
// @Summary      Отследить посылку
// @Tags         tracking
// @Param        order_id  path  string  true  "Идентификатор посылки"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Посылка не найдена"
// @Router       /track/{order_id} [get]
func (h *HTTPHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	start := time.Now()
	order, err := h.svc.TrackOrder(ctx, orderID)
	observeTrackRequest(err, time.Since(start))

	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *HTTPHandler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.CurrentUser(r); !ok {
			utils.WriteError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Каждому виду доменной ошибки соответствует фиксированное сообщение,
// текст бэкенда наружу не протекает.
func (h *HTTPHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var ve *entities.ValidationError
	if errors.As(err, &ve) {
		utils.WriteFieldErrors(w, ve.Fields)
		return
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		utils.WriteValidationError(w, err)
		return
	}

	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrCourierNotFound):
		utils.WriteError(w, "courier not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrConflict):
		utils.WriteError(w, "order was modified by someone else, reload and retry", http.StatusConflict)
	case errors.Is(err, entities.ErrSubmitInFlight):
		utils.WriteError(w, "another submission is in progress", http.StatusConflict)
	case errors.Is(err, entities.ErrBackendUnavailable):
		h.logger.ErrorContext(ctx, "record store unavailable", slog.Any("error", err))
		utils.WriteError(w, "record store unavailable, try again", http.StatusBadGateway)
	default:
		h.logger.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

func listQueryFromRequest(r *http.Request) service.ListQuery {
	q := r.URL.Query()

	dir := service.SortAsc
	if q.Get("dir") == string(service.SortDesc) {
		dir = service.SortDesc
	}

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	return service.ListQuery{
		Search:  q.Get("search"),
		Status:  entities.Status(q.Get("status")),
		Courier: q.Get("courier"),
		SortKey: q.Get("sort"),
		SortDir: dir,
		Page:    page,
		PerPage: perPage,
	}
}
