package remote

import (
	"context"
	"fmt"
	"net/http"

	"shopapp/internal/models"
)

// StoreClient talks to the remote document store. Resources are addressed
// by path with a .json suffix; collection POSTs return the server-assigned
// document key, and writes to protected collections carry the session
// token as a query credential.
type StoreClient struct {
	baseURL string
	client  *http.Client
}

// NewStoreClient creates a client for the document store rooted at baseURL.
func NewStoreClient(baseURL string) *StoreClient {
	return &StoreClient{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// ProductDoc is the stored shape of a catalog entry. The document key
// lives outside the document and becomes the product ID.
type ProductDoc struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Price       float64 `json:"price"`
	OwnerID     string  `json:"ownerId,omitempty"`
}

// Product attaches the document key to the stored fields.
func (d ProductDoc) Product(id string) models.Product {
	return models.Product{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Price:       d.Price,
		OwnerID:     d.OwnerID,
	}
}

// OrderDoc is the stored shape of an order in a per-user collection.
type OrderDoc struct {
	Items       map[string]models.CartItem `json:"items"`
	TotalAmount float64                    `json:"totalAmount"`
	Date        string                     `json:"date"`
}

// Order attaches the document key to the stored fields.
func (d OrderDoc) Order(id string) models.Order {
	return models.Order{
		ID:          id,
		Items:       d.Items,
		TotalAmount: d.TotalAmount,
		Date:        d.Date,
	}
}

type createdResponse struct {
	Name string `json:"name"`
}

type storeErrorBody struct {
	Error string `json:"error"`
}

// ListProducts retrieves the whole product collection keyed by document
// id. An empty collection comes back as JSON null and yields a nil map.
func (c *StoreClient) ListProducts(ctx context.Context) (map[string]ProductDoc, error) {
	url := fmt.Sprintf("%s/products.json", c.baseURL)
	resp, err := send(ctx, c.client, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp, "Could not fetch the products."); err != nil {
		return nil, err
	}

	var docs map[string]ProductDoc
	if err := decodeInto(resp, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateProduct stores a new product document and returns the
// server-assigned key.
func (c *StoreClient) CreateProduct(ctx context.Context, token string, doc ProductDoc) (string, error) {
	url := fmt.Sprintf("%s/products.json?auth=%s", c.baseURL, token)
	return c.create(ctx, url, doc, "Could not create the product.")
}

// UpdateProduct applies a partial update to the product document with the
// given id.
func (c *StoreClient) UpdateProduct(ctx context.Context, token, id string, doc ProductDoc) error {
	url := fmt.Sprintf("%s/products/%s.json?auth=%s", c.baseURL, id, token)
	resp, err := send(ctx, c.client, http.MethodPatch, url, doc)
	if err != nil {
		return err
	}
	if err := c.checkStatus(resp, "Could not update the product."); err != nil {
		return err
	}
	return decodeInto(resp, nil)
}

// DeleteProduct removes the product document with the given id.
func (c *StoreClient) DeleteProduct(ctx context.Context, token, id string) error {
	url := fmt.Sprintf("%s/products/%s.json?auth=%s", c.baseURL, id, token)
	resp, err := send(ctx, c.client, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	if err := c.checkStatus(resp, "Could not delete the product."); err != nil {
		return err
	}
	return decodeInto(resp, nil)
}

// ListOrders retrieves the order collection of one user keyed by document
// id.
func (c *StoreClient) ListOrders(ctx context.Context, userID string) (map[string]OrderDoc, error) {
	url := fmt.Sprintf("%s/order/%s.json", c.baseURL, userID)
	resp, err := send(ctx, c.client, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp, "Could not fetch the orders."); err != nil {
		return nil, err
	}

	var docs map[string]OrderDoc
	if err := decodeInto(resp, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateOrder appends an order document to the user's collection and
// returns the server-assigned key.
func (c *StoreClient) CreateOrder(ctx context.Context, token, userID string, doc OrderDoc) (string, error) {
	url := fmt.Sprintf("%s/order/%s.json?auth=%s", c.baseURL, userID, token)
	return c.create(ctx, url, doc, "Could not create the order.")
}

func (c *StoreClient) create(ctx context.Context, url string, doc interface{}, defaultMsg string) (string, error) {
	resp, err := send(ctx, c.client, http.MethodPost, url, doc)
	if err != nil {
		return "", err
	}
	if err := c.checkStatus(resp, defaultMsg); err != nil {
		return "", err
	}

	var created createdResponse
	if err := decodeInto(resp, &created); err != nil {
		return "", err
	}
	if created.Name == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: defaultMsg}
	}
	return created.Name, nil
}

// checkStatus converts a non-success response into an APIError carrying
// the server-provided error text. It consumes the body in the error case.
func (c *StoreClient) checkStatus(resp *http.Response, defaultMsg string) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	var errBody storeErrorBody
	_ = decodeInto(resp, &errBody)
	msg := errBody.Error
	if msg == "" {
		msg = defaultMsg
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
