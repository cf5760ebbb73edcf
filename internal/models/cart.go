package models

// CartItem is a single cart line, keyed by product ID in the cart map.
// Sum is always Quantity * ProductPrice.
type CartItem struct {
	Quantity     int     `json:"quantity"`
	ProductPrice float64 `json:"productPrice"`
	ProductTitle string  `json:"productTitle"`
	Sum          float64 `json:"sum"`
}
