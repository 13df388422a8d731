// Package mailer wraps the transactional email provider's HTTP API.
//
// One call, one attempt: the gateway enforces a timeout and normalizes the
// provider's success/failure shapes into sentinel errors, but never retries.
// Retry policy, if any, belongs to the caller.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lettervine/lettervine/internal/config"
	"github.com/lettervine/lettervine/internal/domain"
)

var (
	// ErrTimeout means the configured send timeout expired and the
	// outbound request was aborted.
	ErrTimeout = errors.New("email send timed out")
	// ErrProviderRejected means the provider answered but reported a
	// logical failure, possibly under an HTTP 2xx.
	ErrProviderRejected = errors.New("email provider rejected the message")
	// ErrTransport covers non-2xx responses and network failures.
	ErrTransport = errors.New("email provider transport error")
)

type Client struct {
	httpClient  *http.Client
	baseURL     string
	sender      domain.SubscriberEmail
	senderName  string
	credentials string
	timeout     time.Duration
}

// New builds a gateway client from config. The API key/secret pair is
// encoded once as basic-auth credentials.
func New(email config.Email, apiKey, apiSecret string) (*Client, error) {
	sender, err := domain.NewSubscriberEmail(email.Sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", email.Sender, err)
	}

	return &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimSuffix(email.BaseURL, "/"),
		sender:      sender,
		senderName:  email.SenderName,
		credentials: base64.StdEncoding.EncodeToString([]byte(apiKey + ":" + apiSecret)),
		timeout:     email.Timeout(),
	}, nil
}

type party struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type message struct {
	From     party   `json:"From"`
	To       []party `json:"To"`
	Subject  string  `json:"Subject"`
	HTMLPart string  `json:"HTMLPart"`
	TextPart string  `json:"TextPart"`
}

type sendRequest struct {
	Messages []message `json:"Messages"`
}

type messageResult struct {
	Status string `json:"Status"`
}

type sendResponse struct {
	ErrorMessage string          `json:"ErrorMessage"`
	Messages     []messageResult `json:"Messages"`
}

// Send delivers a single email. The in-flight request is aborted when the
// configured timeout fires, surfacing ErrTimeout.
func (c *Client) Send(ctx context.Context, email domain.OutgoingEmail) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(sendRequest{
		Messages: []message{{
			From:     party{Email: c.sender.String(), Name: c.senderName},
			To:       []party{{Email: email.To.String()}},
			Subject:  email.Subject,
			HTMLPart: email.HTMLBody,
			TextPart: email.TextBody,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3.1/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: unparseable response body: %v", ErrTransport, err)
	}

	if parsed.ErrorMessage != "" {
		return fmt.Errorf("%w: %s", ErrProviderRejected, parsed.ErrorMessage)
	}
	// The provider may report HTTP success with a per-message failure
	// embedded in the body.
	for _, m := range parsed.Messages {
		if m.Status != "success" {
			return fmt.Errorf("%w: message status %q", ErrProviderRejected, m.Status)
		}
	}

	return nil
}
