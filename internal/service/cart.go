package service

import "shopfront/internal/domain"

const (
	freeDeliveryThreshold = 500
	flatDeliveryCharge    = 50
)

// ComputeCartTotals aplica las reglas de envío del checkout: sin cargo a
// partir de 500, cargo plano de 50 por debajo. Un carrito vacío totaliza 0
// y por lo tanto paga el cargo plano.
func ComputeCartTotals(items []domain.CartItem) domain.CartTotals {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}

	var delivery float64
	if total < freeDeliveryThreshold {
		delivery = flatDeliveryCharge
	}

	return domain.CartTotals{
		Total:           total,
		DeliveryCharges: delivery,
		GrandTotal:      total + delivery,
	}
}
