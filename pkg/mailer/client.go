package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned when no function URL is configured.
var ErrDisabled = errors.New("mailer: no function url configured")

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Client posts messages to the transactional-email function.
type Client struct {
	HTTPClient    *http.Client
	FunctionURL   string
	APIKey        string
	SigningSecret string
}

type errorPayload struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
}

func (c Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(c.FunctionURL) == "" {
		return ErrDisabled
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mailer: missing recipient")
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.FunctionURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.SigningSecret != "" {
		req.Header.Set(SignatureHeader, Sign(body, c.SigningSecret))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if readErr != nil {
		return readErr
	}

	// Surface the function's error payload so callers can report it.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ep errorPayload
		if len(b) > 0 && json.Unmarshal(b, &ep) == nil {
			if ep.Message != "" {
				return fmt.Errorf("mailer: status=%d: %s", resp.StatusCode, ep.Message)
			}
			if ep.Error != nil {
				return fmt.Errorf("mailer: status=%d: %v", resp.StatusCode, ep.Error)
			}
		}
		if len(b) > 0 {
			return fmt.Errorf("mailer: status=%d body=%s", resp.StatusCode, string(b))
		}
		return fmt.Errorf("mailer: status=%d", resp.StatusCode)
	}
	return nil
}
