package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/pocketbase"
)

const (
	ordersCollection   = "orders"
	couriersCollection = "couriers"
)

// RecordStore — узкий интерфейс клиента хранилища записей.
type RecordStore interface {
	List(ctx context.Context, collection, sort string) ([]json.RawMessage, error)
	GetOne(ctx context.Context, collection, id string) (json.RawMessage, error)
	Create(ctx context.Context, collection string, body any) (json.RawMessage, error)
	Update(ctx context.Context, collection, id string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, collection, id string) error
}

// Store адаптирует CRUD хранилища записей к сущностям заказа и курьера,
// скрывая схему полей бэкенда и переводя его ошибки в доменные.
type Store struct {
	logger *slog.Logger
	pb     RecordStore
}

func NewStore(logger *slog.Logger, pb RecordStore) *Store {
	return &Store{
		logger: logger.With(slog.String("component", "repo")),
		pb:     pb,
	}
}

// ListOrders возвращает все заказы, новые идентификаторы первыми.
func (s *Store) ListOrders(ctx context.Context) ([]entities.Order, error) {
	items, err := s.pb.List(ctx, ordersCollection, "-id")
	if err != nil {
		return nil, backendErr("failed to list orders", err)
	}

	orders := make([]entities.Order, 0, len(items))
	for _, item := range items {
		var rec orderRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, backendErr("failed to decode order record", err)
		}
		orders = append(orders, orderToEntity(rec))
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (entities.Order, error) {
	raw, err := s.pb.GetOne(ctx, ordersCollection, id)
	if errors.Is(err, pocketbase.ErrNotFound) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, backendErr("failed to get order", err)
	}

	var rec orderRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return entities.Order{}, backendErr("failed to decode order record", err)
	}
	return orderToEntity(rec), nil
}

// CreateOrder проверяет, что ссылка на курьера задана и указывает на
// существующую запись, и создаёт заказ.
func (s *Store) CreateOrder(ctx context.Context, draft entities.OrderDraft) (entities.Order, error) {
	if err := s.resolveCourier(ctx, draft.Courier); err != nil {
		return entities.Order{}, err
	}

	raw, err := s.pb.Create(ctx, ordersCollection, draftToWrite(draft))
	if err != nil {
		return entities.Order{}, backendErr("failed to create order", err)
	}

	var rec orderRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return entities.Order{}, backendErr("failed to decode created order", err)
	}

	s.logger.Debug("order created", slog.String("order_id", rec.ID))
	return orderToEntity(rec), nil
}

// UpdateOrder применяет черновик к существующему заказу. Если lastSeenUpdated
// не пуст и не совпадает с текущей меткой записи, возвращается ErrConflict.
func (s *Store) UpdateOrder(ctx context.Context, id string, draft entities.OrderDraft, lastSeenUpdated string) (entities.Order, error) {
	if err := s.resolveCourier(ctx, draft.Courier); err != nil {
		return entities.Order{}, err
	}

	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return entities.Order{}, err
	}
	if lastSeenUpdated != "" && current.Updated != lastSeenUpdated {
		return entities.Order{}, entities.ErrConflict
	}

	raw, err := s.pb.Update(ctx, ordersCollection, id, draftToWrite(draft))
	if errors.Is(err, pocketbase.ErrNotFound) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, backendErr("failed to update order", err)
	}

	var rec orderRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return entities.Order{}, backendErr("failed to decode updated order", err)
	}

	s.logger.Debug("order updated", slog.String("order_id", id))
	return orderToEntity(rec), nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	err := s.pb.Delete(ctx, ordersCollection, id)
	if errors.Is(err, pocketbase.ErrNotFound) {
		return entities.ErrOrderNotFound
	}
	if err != nil {
		return backendErr("failed to delete order", err)
	}

	s.logger.Debug("order deleted", slog.String("order_id", id))
	return nil
}

// ListCouriers возвращает курьеров по алфавиту.
func (s *Store) ListCouriers(ctx context.Context) ([]entities.Courier, error) {
	items, err := s.pb.List(ctx, couriersCollection, "name")
	if err != nil {
		return nil, backendErr("failed to list couriers", err)
	}

	couriers := make([]entities.Courier, 0, len(items))
	for _, item := range items {
		var rec courierRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, backendErr("failed to decode courier record", err)
		}
		couriers = append(couriers, courierToEntity(rec))
	}
	return couriers, nil
}

// resolveCourier проверяет ссылку на курьера до обращения к коллекции заказов:
// при невалидной ссылке запись не создаётся и не изменяется.
func (s *Store) resolveCourier(ctx context.Context, courierID string) error {
	if courierID == "" {
		return entities.NewValidationError("courier", "missing courier")
	}

	_, err := s.pb.GetOne(ctx, couriersCollection, courierID)
	if errors.Is(err, pocketbase.ErrNotFound) {
		return entities.NewValidationError("courier", "courier does not exist")
	}
	if err != nil {
		return backendErr("failed to resolve courier", err)
	}
	return nil
}

func backendErr(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", entities.ErrBackendUnavailable, msg, err)
}
