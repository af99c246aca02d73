package order

// CheckoutRequest payload de checkout.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	CustomerName    string `json:"customer_name"    binding:"required" example:"Ada Lovelace"`
	CustomerEmail   string `json:"customer_email"   binding:"required,email" example:"ada@example.com"`
	CustomerPhone   string `json:"customer_phone"   example:"+34 600 000 000"`
	ShippingAddress string `json:"shipping_address" binding:"required" example:"Calle Mayor 1, Madrid"`
	Notes           string `json:"notes"            example:"dejar en portería"`
}

// UpdateStatusRequest payload de cambio de estado.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"processing"`
}

// ConfirmationResponse is the order plus its lines, rendered after checkout
// and on the confirmation view.
// swagger:model ConfirmationResponse
type ConfirmationResponse struct {
	Order Order  `json:"order"`
	Items []Item `json:"items"`
}
