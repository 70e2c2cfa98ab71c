package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/pkg/cache"

	"golang.org/x/sync/errgroup"
)

type OrderStore interface {
	ListOrders(ctx context.Context) ([]entities.Order, error)
	GetOrder(ctx context.Context, id string) (entities.Order, error)
	CreateOrder(ctx context.Context, draft entities.OrderDraft) (entities.Order, error)
	UpdateOrder(ctx context.Context, id string, draft entities.OrderDraft, lastSeenUpdated string) (entities.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ListCouriers(ctx context.Context) ([]entities.Courier, error)
}

type Cache interface {
	Get(key string) (entities.Order, bool)
	Set(key string, value entities.Order)
	Delete(key string)
}

// Snapshot — результат полной выборки: сырой список заказов и курьеры.
type Snapshot struct {
	Orders   []entities.Order
	Couriers []entities.Courier
}

type OrderService struct {
	logger *slog.Logger
	store  OrderStore
	cache  Cache

	// сканы с уже обработанными идентификаторами сессий отбрасываются
	seen *cache.LRU[time.Time]
}

func NewOrderService(logger *slog.Logger, store OrderStore, c Cache, scanDedupeTTL time.Duration) *OrderService {
	return &OrderService{
		logger: logger.With(slog.String("service", "order")),
		store:  store,
		cache:  c,
		seen:   cache.New[time.Time](4096, scanDedupeTTL),
	}
}

// FetchAll загружает заказы и курьеров параллельно. Список заказов
// заменяется целиком, инкрементальных обновлений нет.
func (s *OrderService) FetchAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.store.ListOrders(ctx)
		if err != nil {
			return err
		}
		snap.Orders = orders
		return nil
	})
	g.Go(func() error {
		couriers, err := s.store.ListCouriers(ctx)
		if err != nil {
			return err
		}
		snap.Couriers = couriers
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// TrackOrder — точечный поиск посылки для публичной страницы отслеживания.
func (s *OrderService) TrackOrder(ctx context.Context, id string) (entities.Order, error) {
	if order, ok := s.cache.Get(id); ok {
		return order, nil
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return entities.Order{}, err
	}

	s.cache.Set(id, order)
	return order, nil
}

func (s *OrderService) Create(ctx context.Context, draft entities.OrderDraft) (entities.Order, error) {
	order, err := s.store.CreateOrder(ctx, draft)
	if err != nil {
		return entities.Order{}, err
	}
	s.logger.Info("order created", slog.String("order_id", order.ID))
	return order, nil
}

func (s *OrderService) Update(ctx context.Context, id string, draft entities.OrderDraft, lastSeenUpdated string) (entities.Order, error) {
	order, err := s.store.UpdateOrder(ctx, id, draft, lastSeenUpdated)
	if err != nil {
		return entities.Order{}, err
	}
	s.cache.Delete(id)
	s.logger.Info("order updated", slog.String("order_id", id))
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(id)
	s.logger.Info("order deleted", slog.String("order_id", id))
	return nil
}

func (s *OrderService) Couriers(ctx context.Context) ([]entities.Courier, error) {
	return s.store.ListCouriers(ctx)
}

// ApplyScan применяет событие мобильного сканера: переводит код статуса
// в канонический и обновляет заказ. Первый скан в рамках сессии
// авторитетен, повторы той же сессии молча отбрасываются.
func (s *OrderService) ApplyScan(ctx context.Context, scan entities.ScanEvent) error {
	if _, dup := s.seen.Get(scan.SessionID); dup {
		s.logger.Debug("duplicate scan dropped",
			slog.String("session_id", scan.SessionID),
			slog.String("order_id", scan.OrderID),
		)
		return nil
	}

	status, err := entities.StatusFromScanCode(scan.StatusCode)
	if err != nil {
		return fmt.Errorf("invalid scan: %w", err)
	}

	order, err := s.store.GetOrder(ctx, scan.OrderID)
	if err != nil {
		return err
	}

	draft := order.Draft()
	draft.Status = status

	if _, err := s.store.UpdateOrder(ctx, order.ID, draft, order.Updated); err != nil {
		return err
	}

	s.seen.Set(scan.SessionID, scan.ScannedAt)
	s.cache.Delete(order.ID)

	s.logger.Info("scan applied",
		slog.String("order_id", order.ID),
		slog.String("status", string(status)),
	)
	return nil
}
