package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"shopapp/internal/store"
)

// OrderHandler handles HTTP requests for the order history and checkout.
type OrderHandler struct {
	orders *store.OrderStore
	cart   *store.CartStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *store.OrderStore, cart *store.CartStore) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		cart:   cart,
	}
}

// RegisterRoutes registers the order routes. All of them require a
// session.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleList)
	router.Post("/orders/checkout", h.HandleCheckout)
}

// HandleList refreshes the user's order history from the document store
// and returns it.
func (h *OrderHandler) HandleList(c *fiber.Ctx) error {
	if err := h.orders.FetchOrders(c.UserContext()); err != nil {
		log.Printf("Error fetching orders: %v", err)
		return remoteError(c, "Could not fetch orders", err)
	}
	return c.JSON(h.orders.Orders())
}

// HandleCheckout turns the current cart into an order. The cart is
// cleared only after the order is stored remotely.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	items := h.cart.Items()
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cart is empty",
		})
	}

	order, err := h.orders.AddOrder(c.UserContext(), items, h.cart.TotalAmount())
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return remoteError(c, "Could not create order", err)
	}

	h.cart.ClearCart()
	return c.Status(fiber.StatusCreated).JSON(order)
}
