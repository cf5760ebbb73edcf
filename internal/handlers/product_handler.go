package handlers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopapp/internal/models"
	"shopapp/internal/store"
	"shopapp/internal/validation"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	products *store.ProductStore
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *store.ProductStore) *ProductHandler {
	return &ProductHandler{
		products: products,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleList)
}

// RegisterSellerRoutes registers the routes that require a session.
func (h *ProductHandler) RegisterSellerRoutes(router fiber.Router) {
	router.Get("/products/mine", h.HandleListOwned)
	router.Post("/products", h.HandleCreate)
	router.Patch("/products/:id", h.HandleUpdate)
	router.Delete("/products/:id", h.HandleDelete)
}

// ProductRequest is the request body for creating and updating products.
type ProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
	Price       float64 `json:"price" validate:"required"`
}

// parseAndValidate decodes the body and applies both the struct tags and
// the field predicates, surfacing per-field messages.
func (h *ProductHandler) parseAndValidate(c *fiber.Ctx) (*ProductRequest, map[string]string, error) {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, err
	}

	fieldErrs := make(map[string]string)
	if err := h.validate.Struct(req); err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			fieldErrs[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	if !validation.IsNotEmpty(req.Title) {
		fieldErrs["title"] = "Please enter a title"
	}
	if !validation.IsURLValid(req.ImageURL) {
		fieldErrs["imageUrl"] = "Please enter a valid image URL"
	}
	if !validation.IsPriceValid(strconv.FormatFloat(req.Price, 'f', -1, 64)) {
		fieldErrs["price"] = "Please enter a price greater than zero"
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}
	return &req, nil, nil
}

// HandleList refreshes the catalog from the document store and returns
// every available product.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	if err := h.products.FetchProducts(c.UserContext()); err != nil {
		log.Printf("Error fetching products: %v", err)
		return remoteError(c, "Could not fetch products", err)
	}
	return c.JSON(h.products.Available())
}

// HandleListOwned returns the current user's products from the last
// fetched catalog.
func (h *ProductHandler) HandleListOwned(c *fiber.Ctx) error {
	if err := h.products.FetchProducts(c.UserContext()); err != nil {
		log.Printf("Error fetching products: %v", err)
		return remoteError(c, "Could not fetch products", err)
	}
	return c.JSON(h.products.Owned())
}

// HandleCreate stores a new product owned by the current user.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	req, fieldErrs, err := h.parseAndValidate(c)
	if err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}

	created, err := h.products.AddProduct(c.UserContext(), models.Product{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
	})
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return remoteError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdate patches an existing product by id.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	req, fieldErrs, err := h.parseAndValidate(c)
	if err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}

	if err := h.products.UpdateProduct(c.UserContext(), models.Product{
		ID:          c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
	}); err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return remoteError(c, "Could not update product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
	})
}

// HandleDelete removes a product by id.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.products.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return remoteError(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
