package entities

import "fmt"

// Status — каноническое строковое представление статуса доставки.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var statuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) Valid() bool {
	_, ok := statuses[s]
	return ok
}

// Коды статусов мобильного сканера.
const (
	ScanCodeWarehouse = 0
	ScanCodeTransit   = 1
	ScanCodeDelivered = 2
)

// StatusFromScanCode преобразует целочисленный код мобильного клиента
// в канонический статус.
func StatusFromScanCode(code int) (Status, error) {
	switch code {
	case ScanCodeWarehouse:
		return StatusProcessing, nil
	case ScanCodeTransit:
		return StatusShipped, nil
	case ScanCodeDelivered:
		return StatusDelivered, nil
	default:
		return "", fmt.Errorf("unknown scan status code %d", code)
	}
}
