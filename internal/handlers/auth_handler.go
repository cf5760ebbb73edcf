package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"shopapp/internal/store"
	"shopapp/internal/validation"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	auth *store.AuthStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *store.AuthStore) *AuthHandler {
	return &AuthHandler{
		auth: auth,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignUp)
	authRoutes.Post("/signin", h.HandleSignIn)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/session", h.HandleSession)
}

// CredentialsRequest is the request body for sign-up and sign-in.
type CredentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// validateCredentials runs the field predicates and returns per-field
// static messages. The confirmation is only checked on sign-up.
func validateCredentials(req CredentialsRequest, signup bool) map[string]string {
	errs := make(map[string]string)
	if !validation.IsValidEmail(req.Email) {
		errs["email"] = "Please enter a valid email address"
	}
	if !validation.IsNotEmpty(req.Password) {
		errs["password"] = "Please enter a password"
	}
	if signup && !validation.IsPasswordMatched(req.ConfirmPassword, req.Password) {
		errs["confirmPassword"] = "Passwords do not match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// HandleSignUp registers a new account with the identity API.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if errs := validateCredentials(req, true); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}

	if err := h.auth.SignUp(c.UserContext(), req.Email, req.Password); err != nil {
		log.Printf("Error signing up %s: %v", req.Email, err)
		return remoteError(c, "Could not sign up", err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.auth.Snapshot())
}

// HandleSignIn exchanges credentials for a session.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signin request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if errs := validateCredentials(req, false); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}

	if err := h.auth.SignIn(c.UserContext(), req.Email, req.Password); err != nil {
		log.Printf("Error signing in %s: %v", req.Email, err)
		return remoteError(c, "Authentication failed", err)
	}
	return c.JSON(h.auth.Snapshot())
}

// HandleLogout clears the session and its durable copy.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.auth.Logout()
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleSession returns the current session state.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	return c.JSON(h.auth.Snapshot())
}
