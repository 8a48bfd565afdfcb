package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"email-datagen/internal/executor/dto"
	"email-datagen/pkg/httpclient"
)

// ProfileRepository reads credential profiles from the configuration store.
type ProfileRepository interface {
	// ResolveActiveProfile returns the name of the profile currently selected in the store.
	ResolveActiveProfile(ctx context.Context) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// NewProfileRepository creates a configuration store client rooted at baseURL.
func NewProfileRepository(client *httpclient.Client, baseURL string) ProfileRepository {
	return &profileRepository{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type profileRepository struct {
	client  *httpclient.Client
	baseURL string
}

// ResolveActiveProfile reads GET /api/email/config/current.
func (r *profileRepository) ResolveActiveProfile(ctx context.Context) (string, error) {
	var out dto.ProfileResponse
	if err := r.get(ctx, "/api/email/config/current", &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Name), nil
}

// Exists looks name up in GET /api/email/configs.
func (r *profileRepository) Exists(ctx context.Context, name string) (bool, error) {
	var out dto.ProfileListResponse
	if err := r.get(ctx, "/api/email/configs", &out); err != nil {
		return false, err
	}
	for _, p := range out.Configs {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *profileRepository) get(ctx context.Context, path string, out interface{}) error {
	resp, err := r.client.DoJSON(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("config store returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
