package domain

// CartItem es una línea del carrito guardado en sesión. No se persiste.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartTotals son los montos calculados para el checkout.
type CartTotals struct {
	Total           float64 `json:"total"`
	DeliveryCharges float64 `json:"delivery_charges"`
	GrandTotal      float64 `json:"grand_total"`
}
