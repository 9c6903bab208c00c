package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/verseroom/verseroom/internal/domain"
)

// WebhookNotifier delivers suggestion resolutions to an external
// notification service over a plain JSON webhook. With an empty endpoint it
// is a no-op, which keeps the wiring uniform in development setups.
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type suggestionResolvedPayload struct {
	UserID       int64  `json:"userId"`
	SuggestionID int64  `json:"suggestionId"`
	SongID       int64  `json:"songId"`
	TextKind     string `json:"textKind"`
	Status       string `json:"status"`
}

func (n *WebhookNotifier) SuggestionResolved(ctx context.Context, s domain.Suggestion) error {
	if n.endpoint == "" {
		return nil
	}

	payload, err := json.Marshal(suggestionResolvedPayload{
		UserID:       s.ProposerID,
		SuggestionID: s.ID,
		SongID:       s.SongID,
		TextKind:     string(s.Kind),
		Status:       string(s.Status),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}
