package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopapp/internal/models"
	"shopapp/internal/store"
)

// CartHandler handles HTTP requests for the local cart.
type CartHandler struct {
	cart     *store.CartStore
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *store.CartStore) *CartHandler {
	return &CartHandler{
		cart:     cart,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/cart", h.HandleView)
	router.Post("/cart/items", h.HandleAddItem)
	router.Delete("/cart/items/:id", h.HandleRemoveItem)
	router.Delete("/cart", h.HandleClear)
}

// AddItemRequest is the product being added to the cart.
type AddItemRequest struct {
	ID    string  `json:"id" validate:"required"`
	Title string  `json:"title" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

// HandleView returns the cart lines and total.
func (h *CartHandler) HandleView(c *fiber.Ctx) error {
	return c.JSON(h.cartView())
}

// HandleAddItem adds one unit of the given product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		fieldErrs := make(map[string]string)
		for _, e := range err.(validator.ValidationErrors) {
			fieldErrs[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}

	h.cart.AddToCart(models.Product{
		ID:    req.ID,
		Title: req.Title,
		Price: req.Price,
	})
	return c.JSON(h.cartView())
}

// HandleRemoveItem removes one unit of the product, or the whole line
// when the line query flag is set. Absent products are a no-op.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	productID := c.Params("id")
	if c.QueryBool("line") {
		h.cart.DeleteProductFromCart(productID)
	} else {
		h.cart.RemoveFromCart(productID)
	}
	return c.JSON(h.cartView())
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	h.cart.ClearCart()
	return c.JSON(h.cartView())
}

func (h *CartHandler) cartView() fiber.Map {
	return fiber.Map{
		"items":       h.cart.Items(),
		"totalAmount": h.cart.TotalAmount(),
	}
}
