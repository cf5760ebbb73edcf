package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// IdentityClient talks to the identity HTTP API.
type IdentityClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewIdentityClient creates a client for the identity API rooted at
// baseURL. The apiKey is attached to every call as a query credential.
func NewIdentityClient(baseURL, apiKey string) *IdentityClient {
	return &IdentityClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  http.DefaultClient,
	}
}

// AuthPayload is the successful response of the sign-up and sign-in
// endpoints.
type AuthPayload struct {
	IDToken   string `json:"idToken"`
	LocalID   string `json:"localId"`
	ExpiresIn string `json:"expiresIn"` // token lifetime in seconds, as a decimal string
}

// ExpiresInDuration converts the ExpiresIn field to a duration. A value
// that does not parse yields zero.
func (p *AuthPayload) ExpiresInDuration() time.Duration {
	secs, err := strconv.Atoi(p.ExpiresIn)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

type credentialsBody struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp registers a new account and returns the issued session token.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*AuthPayload, error) {
	return c.call(ctx, "accounts:signUp", email, password, "Could not sign up the user.")
}

// SignIn exchanges credentials for a session token.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*AuthPayload, error) {
	return c.call(ctx, "accounts:signInWithPassword", email, password, "Could not sign in the user.")
}

func (c *IdentityClient) call(ctx context.Context, endpoint, email, password, defaultMsg string) (*AuthPayload, error) {
	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	body := credentialsBody{Email: email, Password: password, ReturnSecureToken: true}

	resp, err := send(ctx, c.client, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody identityErrorBody
		_ = decodeInto(resp, &errBody)
		msg := errBody.Error.Message
		if msg == "" {
			msg = defaultMsg
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var payload AuthPayload
	if err := decodeInto(resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
