package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultEndpoint = "https://exp.host/--/api/v2/push/send"

// Message is the Expo push payload.
type Message struct {
	To    string            `json:"to"`
	Sound string            `json:"sound,omitempty"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Client posts notifications to the Expo push gateway.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

func NewClient() *Client {
	endpoint := os.Getenv("EXPO_PUSH_URL")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one notification. A missing token is a silent skip since
// users may never have registered a device.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return nil
	}
	if msg.Sound == "" {
		msg.Sound = "default"
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("expo push returned %d", resp.StatusCode)
	}
	return nil
}
