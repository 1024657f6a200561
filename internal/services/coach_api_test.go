package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *FrappeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	client := NewFrappeClient(server.URL+"/", "key", "secret", time.Second)
	t.Cleanup(func() {
		client.httpClient.CloseIdleConnections()
		server.Close()
	})
	return client
}

func TestAuthenticateSendsMembershipAndCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/method/personal_trainer.custom_methods.authenticate_membership", r.URL.Path)
		assert.Equal(t, "MEM 1", r.URL.Query().Get("membership_id"))
		assert.Equal(t, "token key:secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"client":{"name":"CLT-0001","client_name":"Jane","weight_log":[{"date":"2026-10-01","weight":70}]},"membership":{"name":"MEM 1","client":"CLT-0001","enabled":1}}}`))
	})

	data, err := client.Authenticate(context.Background(), "MEM 1")

	require.NoError(t, err)
	require.NotNil(t, data.Client)
	assert.Equal(t, "CLT-0001", data.Client.Name)
	assert.Equal(t, "Jane", data.Client.ClientName)
	weight, ok := data.Client.CurrentWeight()
	assert.True(t, ok)
	assert.Equal(t, 70.0, weight)
	require.NotNil(t, data.Membership)
	assert.Equal(t, 1, data.Membership.Enabled)
}

func TestAuthenticateAcceptsMessageEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"client":{"name":"CLT-0002"}}}`))
	})

	data, err := client.Authenticate(context.Background(), "MEM-2")

	require.NoError(t, err)
	assert.Equal(t, "CLT-0002", data.Client.Name)
}

func TestAuthenticateRejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"exc_type":"PermissionError"}`},
		{name: "not found", status: http.StatusNotFound, body: `not found`},
		{name: "null data", status: http.StatusOK, body: `{"data":null}`},
		{name: "missing client", status: http.StatusOK, body: `{"data":{"membership":{"name":"MEM-1"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Authenticate(context.Background(), "MEM-1")

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
		})
	}
}

func TestAuthenticateMalformedBodyIsRemoteError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := client.Authenticate(context.Background(), "MEM-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateUnreachableIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := NewFrappeClient(baseURL, "", "", time.Second)
	_, err := client.Authenticate(context.Background(), "MEM-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
}

func TestUpdateFieldPostsJSONBody(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/method/personal_trainer.custom_methods.update_client_doc", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":"Client document updated successfully."}`))
	})

	err := client.UpdateField(context.Background(), "CLT-0001", "height", 178.0)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"client_id": "CLT-0001", "field": "height", "value": 178.0}, got)
}

func TestUpdateFieldFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `boom`},
		{name: "error string with 200", status: http.StatusOK, body: `{"message":"Error updating client document: invalid value"}`},
		{name: "not json", status: http.StatusOK, body: `ok`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.UpdateField(context.Background(), "CLT-0001", "goal", "Weight Loss")

			assert.ErrorIs(t, err, ErrRemote)
		})
	}
}

func TestAuthorizationOmittedWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":"Client document updated successfully."}`))
	}))
	client := NewFrappeClient(server.URL, "", "", time.Second)
	t.Cleanup(func() {
		client.httpClient.CloseIdleConnections()
		server.Close()
	})

	require.NoError(t, client.UpdateField(context.Background(), "CLT-0001", "email", "a@b.co"))
}
