package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"email-datagen/internal/entity"
	"email-datagen/internal/executor/dto"
	"email-datagen/pkg/httpclient"
)

// SenderRepository talks to the email-sending backend.
type SenderRepository interface {
	Send(ctx context.Context, emailType entity.EmailType, req *dto.SendRequest) (*dto.SendResponse, error)
}

// NewSenderRepository creates a sender client rooted at baseURL.
func NewSenderRepository(client *httpclient.Client, baseURL string) SenderRepository {
	return &senderRepository{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type senderRepository struct {
	client  *httpclient.Client
	baseURL string
}

// Send posts one send request. A non-2xx answer is returned as an error carrying the backend's message.
func (r *senderRepository) Send(ctx context.Context, emailType entity.EmailType, req *dto.SendRequest) (*dto.SendResponse, error) {
	url := fmt.Sprintf("%s/api/send/%s", r.baseURL, emailType)
	resp, err := r.client.DoJSON(ctx, http.MethodPost, url, req)
	if err != nil {
		return nil, err
	}

	var out dto.SendResponse
	decodeErr := json.Unmarshal(resp.Body, &out)
	if !resp.OK() {
		msg := strings.TrimSpace(out.Error)
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(resp.Body))
		}
		return nil, fmt.Errorf("sender returned status %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode sender response: %w", decodeErr)
	}
	if out.Total == 0 {
		out.Total = out.Sent + out.Failed
	}
	return &out, nil
}
