package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/netx"
)

const apiPrefix = "/api/v1/auth"

// HTTPClient implements Client over the JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	_, err := netx.DoJSON(ctx, c.http, method, c.baseURL+apiPrefix+path, token, in, out)
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var te *netx.TransportError
	if errors.As(err, &te) {
		return fmt.Errorf("%w: %v", ErrUnavailable, te.Err)
	}

	var se *netx.StatusError
	if errors.As(err, &se) {
		apiErr := &APIError{Status: se.Code}
		var body errorBody
		if json.Unmarshal(se.Body, &body) == nil {
			apiErr.Message = body.Error
			apiErr.Problems = body.Problems
		}
		return apiErr
	}
	return err
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Login(ctx context.Context, login, password string) (*Session, error) {
	in := struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}{login, password}

	var s Session
	if err := c.do(ctx, http.MethodPost, "/login", "", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Session(ctx context.Context, token string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodGet, "/session", token, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// RequestReset returns the reset token when the server is configured to
// expose it, "" otherwise.
func (c *HTTPClient) RequestReset(ctx context.Context, email string) (string, error) {
	in := struct {
		Email string `json:"email"`
	}{email}

	var out struct {
		Status     string `json:"status"`
		ResetToken string `json:"reset_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/password-reset", "", in, &out); err != nil {
		return "", err
	}
	return out.ResetToken, nil
}

func (c *HTTPClient) ConfirmReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	in := struct {
		Token           string `json:"token"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}{token, newPassword, confirmPassword}

	return c.do(ctx, http.MethodPost, "/password-reset/confirm", "", in, nil)
}
