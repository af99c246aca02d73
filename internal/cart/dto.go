package cart

// AddItemRequest payload para añadir una línea al carrito.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   binding:"required" example:"2"`
}

// UpdateItemRequest payload de actualización de línea. Quantity cero o
// negativa elimina la línea.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// CountResponse is the badge counter shown next to the cart icon.
// swagger:model CountResponse
type CountResponse struct {
	Count int `json:"count"`
}
