package sellerapi

import (
	"context"
	"net/http"
)

func (c *Client) Login(ctx context.Context, in LoginPayload) (TokenResponse, error) {
	var out TokenResponse
	err := c.Do(ctx, http.MethodPost, "/auth/login", in, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, in SignupPayload) (TokenResponse, error) {
	var out TokenResponse
	err := c.Do(ctx, http.MethodPost, "/auth/signup", in, &out)
	return out, err
}
