package models

// Product represents a catalog entry held by the remote document store.
// ID is the server-assigned document key and stays empty until creation.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	OwnerID     string  `json:"ownerId"`
}
