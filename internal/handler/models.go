package handler

import (
	"time"

	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/service"
)

// Order — заказ в HTTP-представлении. Поле courier несёт идентификатор
// курьера: это имя поля консоли, а не персистентной схемы.
type Order struct {
	ID              string `json:"id"`
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerTel     string `json:"customer_tel"`
	CustomerEmail   string `json:"customer_email"`
	SenderAddress   string `json:"sender_address"`
	Courier         string `json:"courier"`
	Status          string `json:"status"`
	Created         string `json:"created,omitempty"`
	Updated         string `json:"updated,omitempty"`
}

// Courier курьер
type Courier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrderForm — тело запроса создания/редактирования заказа. Поле updated
// несёт последнюю виденную клиентом метку записи для проверки конфликтов.
type OrderForm struct {
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerTel     string `json:"customer_tel"`
	CustomerEmail   string `json:"customer_email"`
	SenderAddress   string `json:"sender_address"`
	Courier         string `json:"courier"`
	Status          string `json:"status"`
	Updated         string `json:"updated,omitempty"`
}

// OrderList — страница производного списка вместе со справочником курьеров.
type OrderList struct {
	Orders     []Order   `json:"orders"`
	Couriers   []Courier `json:"couriers"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page,omitempty"`
	TotalPages int       `json:"total_pages"`
}

// Credentials учётные данные оператора
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User оператор консоли
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Scan — сообщение мобильного сканера из Kafka.
type Scan struct {
	OrderID   string `json:"order_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	Status    int    `json:"status" validate:"gte=0,lte=2"`
	ScannedAt int64  `json:"scanned_at" validate:"required"`
}

func OrderEntityToJSON(o entities.Order) Order {
	return Order{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerTel:     o.CustomerTel,
		CustomerEmail:   o.CustomerEmail,
		SenderAddress:   o.SenderAddress,
		Courier:         o.CourierID,
		Status:          string(o.Status),
		Created:         o.Created,
		Updated:         o.Updated,
	}
}

func CourierEntityToJSON(c entities.Courier) Courier {
	return Courier{ID: c.ID, Name: c.Name}
}

func UserEntityToJSON(u entities.User) User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email}
}

func FormJSONToForm(id string, f OrderForm) service.OrderForm {
	return service.OrderForm{
		ID:              id,
		CustomerName:    f.CustomerName,
		CustomerAddress: f.CustomerAddress,
		CustomerTel:     f.CustomerTel,
		CustomerEmail:   f.CustomerEmail,
		SenderAddress:   f.SenderAddress,
		Courier:         f.Courier,
		Status:          entities.Status(f.Status),
		LastSeenUpdated: f.Updated,
	}
}

func ScanJSONToEntity(s Scan) entities.ScanEvent {
	return entities.ScanEvent{
		OrderID:    s.OrderID,
		SessionID:  s.SessionID,
		StatusCode: s.Status,
		ScannedAt:  time.Unix(s.ScannedAt, 0),
	}
}

func ListPageToJSON(page service.ListPage, couriers []entities.Courier) OrderList {
	orders := make([]Order, 0, len(page.Orders))
	for _, o := range page.Orders {
		orders = append(orders, OrderEntityToJSON(o))
	}

	cs := make([]Courier, 0, len(couriers))
	for _, c := range couriers {
		cs = append(cs, CourierEntityToJSON(c))
	}

	return OrderList{
		Orders:     orders,
		Couriers:   cs,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
}
