package onebot

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

const (
	sendGroupMsgPath   = "/send_group_msg"
	sendPrivateMsgPath = "/send_private_msg"

	defaultAPITimeout = 10 * time.Second
)

// APIConfig configures the outbound HTTP API client.
type APIConfig struct {
	BaseURL     string // http://host:port
	AccessToken string
	Timeout     time.Duration
}

// APIClient posts messages to the gateway's HTTP API. Delivery is
// fire-and-forget: one POST per message, no retry, no confirmation beyond
// the synchronous call.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(cfg APIConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	return &APIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		http:    &http.Client{Timeout: timeout},
	}
}

// Mention renders an at segment in CQ code form for inline use.
func Mention(userID int64) string {
	return fmt.Sprintf("[CQ:at,qq=%d]", userID)
}

type groupMsgRequest struct {
	GroupID int64  `json:"group_id"`
	Message string `json:"message"`
}

type privateMsgRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// SendGroupMsg posts a message to a group. A non-zero mention prefixes the
// message with an at segment for that user.
func (c *APIClient) SendGroupMsg(ctx context.Context, groupID int64, text string, mention int64) error {
	msg := text
	if mention != 0 {
		msg = Mention(mention) + " " + text
	}
	return c.post(ctx, sendGroupMsgPath, groupMsgRequest{GroupID: groupID, Message: msg})
}

// SendPrivateMsg posts a direct message to a user.
func (c *APIClient) SendPrivateMsg(ctx context.Context, userID int64, text string) error {
	return c.post(ctx, sendPrivateMsgPath, privateMsgRequest{UserID: userID, Message: text})
}

func (c *APIClient) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("posting %s: status %d", path, resp.StatusCode)
	}
	return nil
}
