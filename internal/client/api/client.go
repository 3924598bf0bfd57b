// Package api implements the remote Store over the server's HTTP JSON API.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wishkeep/wishkeep/internal/models"
)

// Client talks to a wishkeep server. Login captures the bearer token used
// by every later call.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// New returns a Client for the server at baseURL.
func New(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string      `json:"token"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Coming   bool        `json:"coming"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Session, error) {
	var out loginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &models.Session{Username: out.Username, Role: out.Role, Coming: out.Coming}, nil
}

// Logout drops the captured token.
func (c *Client) Logout() {
	c.token = ""
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, http.MethodPost, "/api/users", body, nil)
}

// DeleteUser removes the user. A failed claim cascade on the server comes
// back as warnings alongside the successful delete.
func (c *Client) DeleteUser(ctx context.Context, username string) ([]string, error) {
	var out struct {
		Status   string   `json:"status"`
		Warnings []string `json:"warnings"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/users/"+username, nil, &out); err != nil {
		return nil, err
	}
	return out.Warnings, nil
}

// RenameUser renames a user. A self-rename invalidates the captured token's
// subject, so the server issues a replacement, which is captured here.
func (c *Client) RenameUser(ctx context.Context, oldName, newName string) error {
	body := map[string]string{"newName": newName}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/"+oldName+"/rename", body, &out); err != nil {
		return err
	}
	if out.Token != "" {
		c.token = out.Token
	}
	return nil
}

func (c *Client) Items(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type itemRequest struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

func (c *Client) CreateItem(ctx context.Context, name, details string) error {
	return c.do(ctx, http.MethodPost, "/api/items", itemRequest{Name: name, Details: details}, nil)
}

func (c *Client) UpdateItem(ctx context.Context, id, name, details string) error {
	return c.do(ctx, http.MethodPut, "/api/items/"+id, itemRequest{Name: name, Details: details}, nil)
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+id, nil, nil)
}

// ClaimItem claims on behalf of the logged-in user; the server takes the
// claimant from the token, so username is ignored here.
func (c *Client) ClaimItem(ctx context.Context, id, _ string) error {
	return c.do(ctx, http.MethodPost, "/api/items/"+id+"/claim", nil, nil)
}

func (c *Client) ReturnItem(ctx context.Context, id, _ string) error {
	return c.do(ctx, http.MethodPost, "/api/items/"+id+"/return", nil, nil)
}

func (c *Client) EventDetails(ctx context.Context) (string, error) {
	var out struct {
		Details string `json:"details"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/event", nil, &out); err != nil {
		return "", err
	}
	return out.Details, nil
}

func (c *Client) SetEventDetails(ctx context.Context, text string) error {
	body := map[string]string{"details": text}
	return c.do(ctx, http.MethodPut, "/api/event", body, nil)
}

func (c *Client) ConfirmArrival(ctx context.Context, _ string) error {
	return c.do(ctx, http.MethodPost, "/api/rsvp/confirm", nil, nil)
}

func (c *Client) DeclineArrival(ctx context.Context, _ string) error {
	return c.do(ctx, http.MethodPost, "/api/rsvp/decline", nil, nil)
}

func (c *Client) CancelArrival(ctx context.Context, _ string) ([]string, error) {
	var out struct {
		Status   string   `json:"status"`
		Warnings []string `json:"warnings"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/rsvp/cancel", nil, &out); err != nil {
		return nil, err
	}
	return out.Warnings, nil
}

// do sends one JSON request and decodes the response into out when out is
// non-nil. Error statuses are mapped back onto the model sentinels so the
// view can branch on them the same way in both modes.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return models.ErrInvalidCredentials
		case http.StatusBadRequest:
			return models.ErrValidation
		case http.StatusNotFound:
			return models.ErrNotFound
		case http.StatusConflict:
			return models.ErrNameConflict
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StartWatch subscribes to the server's change feed and invokes onChange
// with the collection name for every event, until ctx is cancelled. Lost
// connections are retried.
func (c *Client) StartWatch(ctx context.Context, onChange func(collection string)) {
	go func() {
		for {
			if err := c.watch(ctx, onChange); err != nil {
				if ctx.Err() != nil {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()
}

func (c *Client) watch(ctx context.Context, onChange func(collection string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/watch", nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// The feed is a long-lived response, so the regular client timeout
	// would cut it off mid-stream.
	stream := &http.Client{Transport: c.http.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("watch returned %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			onChange(name)
		}
	}
	return scanner.Err()
}
