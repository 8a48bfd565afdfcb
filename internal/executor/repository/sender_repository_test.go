package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/executor/dto"
	"email-datagen/pkg/httpclient"
	"email-datagen/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{Timeout: time.Second, Retries: 0, RetryDelay: time.Millisecond}, logger.NewNop())
}

func TestSenderRepository_Send(t *testing.T) {
	var got dto.SendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/send/phishing", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"sent":2,"failed":0,"errors":[]}`))
	}))
	defer srv.Close()

	repo := NewSenderRepository(newTestClient(), srv.URL+"/")
	resp, err := repo.Send(context.Background(), entity.EmailTypePhishing, &dto.SendRequest{
		Count: 2, Recipients: []string{"a@example.com"}, TemplateType: "urgent", ConfigName: "corp",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "urgent", got.TemplateType)
	assert.Equal(t, "corp", got.ConfigName)
}

func TestSenderRepository_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No recipients specified"}`))
	}))
	defer srv.Close()

	_, err := NewSenderRepository(newTestClient(), srv.URL).Send(context.Background(), entity.EmailTypeEICAR, &dto.SendRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "No recipients specified")
}

func TestSenderRepository_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"sent":1,"failed":1,"total":2,"errors":["mailbox full"]}`))
	}))
	defer srv.Close()

	resp, err := NewSenderRepository(newTestClient(), srv.URL).Send(context.Background(), entity.EmailTypeCynic, &dto.SendRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"mailbox full"}, resp.Errors)
}

func TestProfileRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/email/config/current":
			_, _ = w.Write([]byte(`{"name":" gmail "}`))
		case "/api/email/configs":
			_, _ = w.Write([]byte(`{"configs":[{"name":"gmail"},{"name":"office365"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	repo := NewProfileRepository(newTestClient(), srv.URL)
	active, err := repo.ResolveActiveProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gmail", active)

	ok, err := repo.Exists(context.Background(), "office365")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "yahoo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileRepository_StoreDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewProfileRepository(newTestClient(), srv.URL).ResolveActiveProfile(context.Background())
	assert.Error(t, err)
}
