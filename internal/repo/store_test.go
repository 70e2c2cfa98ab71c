package repo_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/pocketbase"
	"github.com/plajta/depo-service/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordStore struct {
	list   func(ctx context.Context, collection, sort string) ([]json.RawMessage, error)
	getOne func(ctx context.Context, collection, id string) (json.RawMessage, error)
	create func(ctx context.Context, collection string, body any) (json.RawMessage, error)
	update func(ctx context.Context, collection, id string, body any) (json.RawMessage, error)
	del    func(ctx context.Context, collection, id string) error
}

func (f *fakeRecordStore) List(ctx context.Context, collection, sort string) ([]json.RawMessage, error) {
	return f.list(ctx, collection, sort)
}

func (f *fakeRecordStore) GetOne(ctx context.Context, collection, id string) (json.RawMessage, error) {
	return f.getOne(ctx, collection, id)
}

func (f *fakeRecordStore) Create(ctx context.Context, collection string, body any) (json.RawMessage, error) {
	return f.create(ctx, collection, body)
}

func (f *fakeRecordStore) Update(ctx context.Context, collection, id string, body any) (json.RawMessage, error) {
	return f.update(ctx, collection, id, body)
}

func (f *fakeRecordStore) Delete(ctx context.Context, collection, id string) error {
	return f.del(ctx, collection, id)
}

func newStore(pb repo.RecordStore) *repo.Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo.NewStore(logger, pb)
}

func orderRaw(t *testing.T, fields map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return raw
}

func courierOK(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if collection == "couriers" {
		return json.RawMessage(`{"id":"` + id + `","name":"PPL"}`), nil
	}
	return nil, pocketbase.ErrNotFound
}

func TestStore_ListOrders(t *testing.T) {
	pb := &fakeRecordStore{
		list: func(ctx context.Context, collection, sort string) ([]json.RawMessage, error) {
			assert.Equal(t, "orders", collection)
			assert.Equal(t, "-id", sort)
			return []json.RawMessage{
				orderRaw(t, map[string]any{
					"id":               "o1",
					"Customer_name":    "Alice",
					"Customer_address": "Main 1",
					"courier_id":       "c1",
					"status":           "pending",
					"updated":          "2026-01-01 10:00:00",
				}),
			}, nil
		},
	}

	orders, err := newStore(pb).ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	// имена полей бэкенда переведены в сущность
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "Alice", orders[0].CustomerName)
	assert.Equal(t, "c1", orders[0].CourierID)
	assert.Equal(t, entities.StatusPending, orders[0].Status)
	assert.Equal(t, "2026-01-01 10:00:00", orders[0].Updated)
}

func TestStore_GetOrder_NotFound(t *testing.T) {
	pb := &fakeRecordStore{
		getOne: func(ctx context.Context, collection, id string) (json.RawMessage, error) {
			return nil, pocketbase.ErrNotFound
		},
	}

	_, err := newStore(pb).GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)
}

func TestStore_CreateOrder(t *testing.T) {
	draft := entities.OrderDraft{
		CustomerName: "Alice",
		Courier:      "c1",
		Status:       entities.StatusPending,
	}

	t.Run("translates courier reference", func(t *testing.T) {
		var created map[string]any
		pb := &fakeRecordStore{
			getOne: courierOK,
			create: func(ctx context.Context, collection string, body any) (json.RawMessage, error) {
				raw, err := json.Marshal(body)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(raw, &created))
				return orderRaw(t, map[string]any{"id": "new1", "courier_id": "c1"}), nil
			},
		}

		order, err := newStore(pb).CreateOrder(context.Background(), draft)
		require.NoError(t, err)
		assert.Equal(t, "new1", order.ID)

		// в записи ссылка называется courier_id, а не courier
		assert.Equal(t, "c1", created["courier_id"])
		assert.NotContains(t, created, "courier")
		assert.Equal(t, "Alice", created["Customer_name"])
	})

	t.Run("missing courier", func(t *testing.T) {
		pb := &fakeRecordStore{
			create: func(ctx context.Context, collection string, body any) (json.RawMessage, error) {
				t.Fatal("create must not be called")
				return nil, nil
			},
		}

		empty := draft
		empty.Courier = ""
		_, err := newStore(pb).CreateOrder(context.Background(), empty)

		var ve *entities.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "missing courier", ve.Fields["courier"])
	})

	t.Run("unknown courier", func(t *testing.T) {
		pb := &fakeRecordStore{
			getOne: func(ctx context.Context, collection, id string) (json.RawMessage, error) {
				return nil, pocketbase.ErrNotFound
			},
			create: func(ctx context.Context, collection string, body any) (json.RawMessage, error) {
				t.Fatal("create must not be called")
				return nil, nil
			},
		}

		_, err := newStore(pb).CreateOrder(context.Background(), draft)

		var ve *entities.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "courier does not exist", ve.Fields["courier"])
	})
}

func TestStore_UpdateOrder(t *testing.T) {
	draft := entities.OrderDraft{
		CustomerName: "Alice",
		Courier:      "c1",
		Status:       entities.StatusShipped,
	}

	current := map[string]any{
		"id":      "o1",
		"updated": "2026-01-01 10:00:00",
	}

	t.Run("success with matching version", func(t *testing.T) {
		pb := &fakeRecordStore{
			getOne: func(ctx context.Context, collection, id string) (json.RawMessage, error) {
				if collection == "couriers" {
					return courierOK(ctx, collection, id)
				}
				return orderRaw(t, current), nil
			},
			update: func(ctx context.Context, collection, id string, body any) (json.RawMessage, error) {
				assert.Equal(t, "o1", id)
				return orderRaw(t, map[string]any{"id": "o1", "status": "shipped"}), nil
			},
		}

		order, err := newStore(pb).UpdateOrder(context.Background(), "o1", draft, "2026-01-01 10:00:00")
		require.NoError(t, err)
		assert.Equal(t, entities.StatusShipped, order.Status)
	})

	t.Run("stale version", func(t *testing.T) {
		pb := &fakeRecordStore{
			getOne: func(ctx context.Context, collection, id string) (json.RawMessage, error) {
				if collection == "couriers" {
					return courierOK(ctx, collection, id)
				}
				return orderRaw(t, current), nil
			},
			update: func(ctx context.Context, collection, id string, body any) (json.RawMessage, error) {
				t.Fatal("update must not be called")
				return nil, nil
			},
		}

		_, err := newStore(pb).UpdateOrder(context.Background(), "o1", draft, "2025-12-31 09:00:00")
		assert.ErrorIs(t, err, entities.ErrConflict)
	})

	t.Run("nonexistent order", func(t *testing.T) {
		pb := &fakeRecordStore{
			getOne: func(ctx context.Context, collection, id string) (json.RawMessage, error) {
				if collection == "couriers" {
					return courierOK(ctx, collection, id)
				}
				return nil, pocketbase.ErrNotFound
			},
		}

		_, err := newStore(pb).UpdateOrder(context.Background(), "ghost", draft, "")
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestStore_DeleteOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		pb := &fakeRecordStore{
			del: func(ctx context.Context, collection, id string) error {
				assert.Equal(t, "orders", collection)
				assert.Equal(t, "o1", id)
				return nil
			},
		}
		assert.NoError(t, newStore(pb).DeleteOrder(context.Background(), "o1"))
	})

	t.Run("not found", func(t *testing.T) {
		pb := &fakeRecordStore{
			del: func(ctx context.Context, collection, id string) error {
				return pocketbase.ErrNotFound
			},
		}
		assert.ErrorIs(t, newStore(pb).DeleteOrder(context.Background(), "ghost"), entities.ErrOrderNotFound)
	})
}

func TestStore_ListCouriers(t *testing.T) {
	pb := &fakeRecordStore{
		list: func(ctx context.Context, collection, sort string) ([]json.RawMessage, error) {
			assert.Equal(t, "couriers", collection)
			assert.Equal(t, "name", sort)
			return []json.RawMessage{
				json.RawMessage(`{"id":"c1","name":"DHL"}`),
				json.RawMessage(`{"id":"c2","name":"PPL"}`),
			}, nil
		},
	}

	couriers, err := newStore(pb).ListCouriers(context.Background())
	require.NoError(t, err)
	require.Len(t, couriers, 2)
	assert.Equal(t, "DHL", couriers[0].Name)
}
