package repo

import (
	"github.com/plajta/depo-service/internal/entities"
)

// Персистентная схема заказа. Поле courier_id — единственное место,
// где UI-имя "courier" переводится в имя, под которым ссылку хранит бэкенд.
type orderRecord struct {
	ID              string `json:"id"`
	CustomerName    string `json:"Customer_name"`
	CustomerAddress string `json:"Customer_address"`
	CustomerTel     string `json:"Customer_tel"`
	CustomerEmail   string `json:"Customer_email"`
	SenderAddress   string `json:"Sender_address"`
	CourierID       string `json:"courier_id"`
	Status          string `json:"status"`
	Created         string `json:"created"`
	Updated         string `json:"updated"`
}

// Тело create/update запроса: без id и служебных меток времени,
// их назначает хранилище.
type orderWrite struct {
	CustomerName    string `json:"Customer_name"`
	CustomerAddress string `json:"Customer_address"`
	CustomerTel     string `json:"Customer_tel"`
	CustomerEmail   string `json:"Customer_email"`
	SenderAddress   string `json:"Sender_address"`
	CourierID       string `json:"courier_id"`
	Status          string `json:"status"`
}

type courierRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func orderToEntity(r orderRecord) entities.Order {
	return entities.Order{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerAddress: r.CustomerAddress,
		CustomerTel:     r.CustomerTel,
		CustomerEmail:   r.CustomerEmail,
		SenderAddress:   r.SenderAddress,
		CourierID:       r.CourierID,
		Status:          entities.Status(r.Status),
		Created:         r.Created,
		Updated:         r.Updated,
	}
}

func draftToWrite(d entities.OrderDraft) orderWrite {
	return orderWrite{
		CustomerName:    d.CustomerName,
		CustomerAddress: d.CustomerAddress,
		CustomerTel:     d.CustomerTel,
		CustomerEmail:   d.CustomerEmail,
		SenderAddress:   d.SenderAddress,
		CourierID:       d.Courier,
		Status:          string(d.Status),
	}
}

func courierToEntity(r courierRecord) entities.Courier {
	return entities.Courier{
		ID:   r.ID,
		Name: r.Name,
	}
}
