package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/plajta/depo-service/internal/entities"

	"github.com/go-playground/validator/v10"
)

// Submitter — часть OrderService, нужная форме.
type Submitter interface {
	Create(ctx context.Context, draft entities.OrderDraft) (entities.Order, error)
	Update(ctx context.Context, id string, draft entities.OrderDraft, lastSeenUpdated string) (entities.Order, error)
}

// OrderForm — поля формы создания/редактирования. Пустой ID означает
// создание. LastSeenUpdated — метка версии для проверки конфликтов.
type OrderForm struct {
	ID string

	CustomerName    string          `validate:"required"`
	CustomerAddress string          `validate:"required"`
	CustomerTel     string          `validate:"required"`
	CustomerEmail   string          `validate:"required,email"`
	SenderAddress   string          `validate:"required"`
	Courier         string          `validate:"required"`
	Status          entities.Status `validate:"required"`

	LastSeenUpdated string
}

// FormController валидирует форму и передаёт её в сервис. Пока одна
// отправка в полёте, вторая отклоняется.
type FormController struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      Submitter

	busy atomic.Bool
}

func NewFormController(logger *slog.Logger, svc Submitter) *FormController {
	return &FormController{
		logger:   logger.With(slog.String("component", "form")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (c *FormController) Submit(ctx context.Context, form OrderForm) (entities.Order, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return entities.Order{}, entities.ErrSubmitInFlight
	}
	defer c.busy.Store(false)

	if err := c.validate.Struct(form); err != nil {
		return entities.Order{}, err
	}
	if !form.Status.Valid() {
		return entities.Order{}, entities.NewValidationError("status", "unknown status")
	}

	draft := entities.OrderDraft{
		CustomerName:    form.CustomerName,
		CustomerAddress: form.CustomerAddress,
		CustomerTel:     form.CustomerTel,
		CustomerEmail:   form.CustomerEmail,
		SenderAddress:   form.SenderAddress,
		Courier:         form.Courier,
		Status:          form.Status,
	}

	if form.ID == "" {
		return c.svc.Create(ctx, draft)
	}
	return c.svc.Update(ctx, form.ID, draft, form.LastSeenUpdated)
}

// Prefill строит форму редактирования из выбранного заказа. Ссылка на
// курьера сверяется с уже загруженным списком: если совпадения нет,
// поле остаётся пустым, без ошибки.
func Prefill(order entities.Order, couriers []entities.Courier) OrderForm {
	form := OrderForm{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		CustomerTel:     order.CustomerTel,
		CustomerEmail:   order.CustomerEmail,
		SenderAddress:   order.SenderAddress,
		Status:          order.Status,
		LastSeenUpdated: order.Updated,
	}

	for _, c := range couriers {
		if c.ID == order.CourierID {
			form.Courier = c.ID
			break
		}
	}
	return form
}
