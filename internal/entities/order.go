package entities

// Order представляет посылку. Поля Created и Updated назначаются хранилищем
// и используются как непрозрачные метки (Updated участвует в проверке конфликтов).
type Order struct {
	ID              string
	CustomerName    string
	CustomerAddress string
	CustomerTel     string
	CustomerEmail   string
	SenderAddress   string
	CourierID       string
	Status          Status

	Created string
	Updated string
}

// OrderDraft содержит поля формы создания/редактирования заказа.
// Courier хранит идентификатор курьера в терминах UI, преобразование
// в персистентное поле courier_id выполняет слой repo.
type OrderDraft struct {
	CustomerName    string
	CustomerAddress string
	CustomerTel     string
	CustomerEmail   string
	SenderAddress   string
	Courier         string
	Status          Status
}

// Draft возвращает черновик с текущими значениями заказа,
// пригодный для частичного изменения (например смены статуса при скане).
func (o Order) Draft() OrderDraft {
	return OrderDraft{
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerTel:     o.CustomerTel,
		CustomerEmail:   o.CustomerEmail,
		SenderAddress:   o.SenderAddress,
		Courier:         o.CourierID,
		Status:          o.Status,
	}
}
