package entities

import "time"

// ScanEvent — событие мобильного сканера: успешное распознавание кода
// посылки в рамках одной сессии сканирования.
type ScanEvent struct {
	OrderID    string
	SessionID  string
	StatusCode int
	ScannedAt  time.Time
}
