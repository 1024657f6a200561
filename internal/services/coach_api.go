package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yamenzk/personal-trainer/internal/models"
)

var (
	// ErrUnauthorized means the document API rejected the membership id.
	ErrUnauthorized = errors.New("membership rejected")
	// ErrRemote covers transport failures and unexpected responses.
	ErrRemote = errors.New("coach api request failed")
)

const (
	authenticateMethod = "personal_trainer.custom_methods.authenticate_membership"
	updateClientMethod = "personal_trainer.custom_methods.update_client_doc"
	updateSucceeded    = "Client document updated successfully."
)

type ClientAPI interface {
	Authenticate(ctx context.Context, membershipID string) (*models.ClientData, error)
	UpdateField(ctx context.Context, clientID, field string, value any) error
}

// FrappeClient talks to the coaching document API.
type FrappeClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewFrappeClient(baseURL, apiKey, apiSecret string, timeout time.Duration) *FrappeClient {
	return &FrappeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *FrappeClient) Authenticate(ctx context.Context, membershipID string) (*models.ClientData, error) {
	query := url.Values{}
	query.Set("membership_id", membershipID)
	authURL := fmt.Sprintf("%s/api/v2/method/%s?%s", c.baseURL, authenticateMethod, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build authenticate request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w: %w", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("authenticate: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), ErrUnauthorized)
	}

	var envelope struct {
		Data    *models.ClientData `json:"data"`
		Message *models.ClientData `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode authenticate response: %w: %w", ErrRemote, err)
	}
	data := envelope.Data
	if data == nil {
		data = envelope.Message
	}
	if data == nil || data.Client == nil {
		return nil, fmt.Errorf("authenticate: empty client document: %w", ErrUnauthorized)
	}
	return data, nil
}

func (c *FrappeClient) UpdateField(ctx context.Context, clientID, field string, value any) error {
	payload, err := json.Marshal(map[string]any{
		"client_id": clientID,
		"field":     field,
		"value":     value,
	})
	if err != nil {
		return fmt.Errorf("marshal update payload: %w", err)
	}

	updateURL := fmt.Sprintf("%s/api/v2/method/%s", c.baseURL, updateClientMethod)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, updateURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update %s: %w: %w", field, ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("update %s: status %d: %s: %w", field, resp.StatusCode, strings.TrimSpace(string(body)), ErrRemote)
	}

	// The method reports its own failures as a 200 with a message string.
	var envelope struct {
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode update response: %w: %w", ErrRemote, err)
	}
	result := envelope.Data
	if result == "" {
		result = envelope.Message
	}
	if result != updateSucceeded {
		return fmt.Errorf("update %s: %s: %w", field, result, ErrRemote)
	}
	return nil
}

func (c *FrappeClient) authorize(req *http.Request) {
	if c.apiKey == "" {
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.apiSecret))
}
