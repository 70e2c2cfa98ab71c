package entities

// Courier — агент доставки. Создаётся вне консоли, для заказов read-only.
type Courier struct {
	ID   string
	Name string
}

// User — оператор консоли.
type User struct {
	ID    string
	Name  string
	Email string
}
