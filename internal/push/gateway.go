package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://fcm.googleapis.com"

// GatewayResponse is the send endpoint's answer, kept verbatim.
type GatewayResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type Gateway struct {
	baseURL   string
	projectID string
	client    *http.Client
}

func NewGateway(baseURL, projectID string, client *http.Client) *Gateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		client:    client,
	}
}

type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token        string       `json:"token"`
	Notification notification `json:"notification"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (g *Gateway) Send(ctx context.Context, accessToken, deviceToken, title, body string) (*GatewayResponse, error) {
	payload, err := json.Marshal(sendRequest{
		Message: message{
			Token:        deviceToken,
			Notification: notification{Title: title, Body: body},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("push: encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/projects/%s/messages:send", g.baseURL, g.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("push: build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("push: read send response: %w", err)
	}

	return &GatewayResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}
