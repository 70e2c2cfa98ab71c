package service

import (
	"sort"
	"strings"

	"github.com/plajta/depo-service/internal/entities"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ListQuery — состояние фильтров и сортировки списка заказов.
// Пустое значение измерения означает отсутствие ограничения по нему.
type ListQuery struct {
	Search  string
	Status  entities.Status
	Courier string

	SortKey string
	SortDir SortDir

	Page    int
	PerPage int
}

// Toggle возвращает запрос с переключённой сортировкой: повторный выбор
// того же ключа меняет направление, новый ключ сбрасывает его в asc.
func (q ListQuery) Toggle(key string) ListQuery {
	if q.SortKey == key {
		if q.SortDir == SortDesc {
			q.SortDir = SortAsc
		} else {
			q.SortDir = SortDesc
		}
		return q
	}
	q.SortKey = key
	q.SortDir = SortAsc
	return q
}

type ListPage struct {
	Orders     []entities.Order
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// BuildListPage — чистая функция производного списка: фильтрация,
// сортировка и пагинация исходного списка по запросу. Исходный срез
// не изменяется, результат зависит только от аргументов.
func BuildListPage(orders []entities.Order, q ListQuery) ListPage {
	term := strings.ToLower(q.Search)

	filtered := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		if term != "" && !matchesSearch(o, term) {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.Courier != "" && o.CourierID != q.Courier {
			continue
		}
		filtered = append(filtered, o)
	}

	if q.SortKey != "" {
		desc := q.SortDir == SortDesc
		sort.SliceStable(filtered, func(i, j int) bool {
			a := sortValue(filtered[i], q.SortKey)
			b := sortValue(filtered[j], q.SortKey)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	total := len(filtered)

	if q.PerPage <= 0 {
		return ListPage{Orders: filtered, Total: total, Page: 1, TotalPages: 1}
	}

	totalPages := (total + q.PerPage - 1) / q.PerPage
	if totalPages == 0 {
		totalPages = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * q.PerPage
	end := start + q.PerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return ListPage{
		Orders:     filtered[start:end],
		Total:      total,
		Page:       page,
		PerPage:    q.PerPage,
		TotalPages: totalPages,
	}
}

// Поиск сверяет подстроку без учёта регистра с именем, почтой, телефоном,
// адресом клиента и идентификатором заказа.
func matchesSearch(o entities.Order, term string) bool {
	return strings.Contains(strings.ToLower(o.CustomerName), term) ||
		strings.Contains(strings.ToLower(o.CustomerEmail), term) ||
		strings.Contains(strings.ToLower(o.CustomerTel), term) ||
		strings.Contains(strings.ToLower(o.CustomerAddress), term) ||
		strings.Contains(strings.ToLower(o.ID), term)
}

// Неизвестный ключ даёт пустое значение для всех элементов: стабильная
// сортировка сохраняет исходный порядок.
func sortValue(o entities.Order, key string) string {
	switch key {
	case "id":
		return o.ID
	case "customer_name":
		return o.CustomerName
	case "customer_address":
		return o.CustomerAddress
	case "customer_tel":
		return o.CustomerTel
	case "customer_email":
		return o.CustomerEmail
	case "sender_address":
		return o.SenderAddress
	case "courier":
		return o.CourierID
	case "status":
		return string(o.Status)
	case "created":
		return o.Created
	case "updated":
		return o.Updated
	default:
		return ""
	}
}
