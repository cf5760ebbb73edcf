package models

// Order is a completed purchase. Orders are immutable once created;
// Items holds the cart lines as they were at checkout, keyed by product ID.
type Order struct {
	ID          string              `json:"id"`
	Items       map[string]CartItem `json:"items"`
	TotalAmount float64             `json:"totalAmount"`
	Date        string              `json:"date"` // server-formatted creation timestamp
}
