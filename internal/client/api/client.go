package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/velotrans/tms/internal/common"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// do performs one JSON request. API error payloads come back wrapped around
// the shared sentinels, so callers match with errors.Is; transport failures
// are returned as-is.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload := errorPayload{}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = resp.Status
		}
		return fmt.Errorf("%s: %w", payload.Error, common.ErrorFromCode(payload.Code))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, email, password, role string) (*AuthPayload, error) {
	out := &AuthPayload{}
	err := c.do(ctx, http.MethodPost, "/api/register", "",
		map[string]string{"email": email, "password": password, "role": role}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	out := &AuthPayload{}
	err := c.do(ctx, http.MethodPost, "/api/login", "",
		map[string]string{"email": email, "password": password}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthPayload, error) {
	out := &AuthPayload{}
	err := c.do(ctx, http.MethodPost, "/api/refresh", "",
		map[string]string{"refreshToken": refreshToken}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/api/logout", "",
		map[string]string{"refreshToken": refreshToken}, nil)
}

func (c *Client) Me(ctx context.Context, accessToken string) (*User, error) {
	out := &User{}
	if err := c.do(ctx, http.MethodGet, "/api/me", accessToken, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListShipments(ctx context.Context, accessToken string) (*ShipmentList, error) {
	out := &ShipmentList{}
	if err := c.do(ctx, http.MethodGet, "/api/shipments", accessToken, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateShipment(ctx context.Context, accessToken string, in ShipmentInput) (*Shipment, error) {
	out := &Shipment{}
	if err := c.do(ctx, http.MethodPost, "/api/shipments", accessToken, in, out); err != nil {
		return nil, err
	}
	return out, nil
}
