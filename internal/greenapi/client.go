// Package greenapi implements the GREEN-API WhatsApp gateway protocol:
// long-poll notification receive, delete-by-receipt acknowledgment, and
// text message send.
package greenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rovelle/charbot/internal/config"
	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
)

// ProtocolError is a non-success response from any gateway call.
type ProtocolError struct {
	Code    int
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway returned status %d", e.Code)
}

// Client talks to a single GREEN-API instance.
type Client struct {
	baseURL        string
	instanceID     string
	token          string
	receiveTimeout int
	client         *http.Client
	log            *logging.Logger
}

// NewClient creates a gateway client for the configured instance. The HTTP
// timeout is sized to cover the long-poll receive window.
func NewClient(cfg config.GatewayConfig, log *logging.Logger) *Client {
	timeout := cfg.ReceiveTimeoutSec
	if timeout <= 0 {
		timeout = 20
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		instanceID:     cfg.InstanceID,
		token:          cfg.Token,
		receiveTimeout: timeout,
		client:         &http.Client{Timeout: time.Duration(timeout+10) * time.Second},
		log:            log.Sub("greenapi"),
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/waInstance%s/%s/%s", c.baseURL, c.instanceID, method, c.token)
}

// receiveEnvelope is the wire shape of a queued notification.
type receiveEnvelope struct {
	ReceiptID int64       `json:"receiptId"`
	Body      webhookBody `json:"body"`
}

type webhookBody struct {
	TypeWebhook string     `json:"typeWebhook"`
	SenderData  senderData `json:"senderData"`
	MessageData struct {
		TypeMessage     string `json:"typeMessage"`
		TextMessageData struct {
			TextMessage string `json:"textMessage"`
		} `json:"textMessageData"`
		ExtendedTextMessageData struct {
			Text string `json:"text"`
		} `json:"extendedTextMessageData"`
	} `json:"messageData"`
}

type senderData struct {
	ChatID     string `json:"chatId"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
}

// errorBody is the gateway's error response shape, when it bothers to send one.
type errorBody struct {
	Error string `json:"error"`
}

// Receive blocks on the gateway's long-poll endpoint and returns at most one
// notification. A nil notification with a nil error means the queue was empty
// for the whole poll window.
func (c *Client) Receive(ctx context.Context) (*domain.Notification, error) {
	url := c.methodURL("receiveNotification") + "?receiveTimeout=" + strconv.Itoa(c.receiveTimeout)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	// An empty queue is reported as a JSON null body.
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var env receiveEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse notification: %w", err)
	}

	text := env.Body.MessageData.TextMessageData.TextMessage
	if text == "" {
		text = env.Body.MessageData.ExtendedTextMessageData.Text
	}

	return &domain.Notification{
		ReceiptID:   env.ReceiptID,
		WebhookType: env.Body.TypeWebhook,
		SenderID:    env.Body.SenderData.ChatID,
		SenderName:  env.Body.SenderData.SenderName,
		Text:        text,
	}, nil
}

// Ack deletes a consumed notification from the gateway queue. Until this call
// succeeds the gateway keeps redelivering the notification.
func (c *Client) Ack(ctx context.Context, receiptID int64) error {
	url := fmt.Sprintf("%s/%d", c.methodURL("deleteNotification"), receiptID)

	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		return err
	}
	c.log.Debug().Int64("receipt_id", receiptID).Msg("notification acknowledged")
	return nil
}

// Send delivers a text message to a chat. Fire and forget: the gateway's
// message id is logged but not returned.
func (c *Client) Send(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chatId":  chatID,
		"message": text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}

	var sent struct {
		IDMessage string `json:"idMessage"`
	}
	if err := json.Unmarshal(body, &sent); err == nil && sent.IDMessage != "" {
		c.log.Debug().Str("chat_id", chatID).Str("message_id", sent.IDMessage).Msg("message sent")
	}
	return nil
}

// do executes a request and validates the response envelope. A non-success
// status with an error body produces a ProtocolError carrying that message;
// without one, the status code alone.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, &ProtocolError{Code: resp.StatusCode, Message: eb.Error}
	}

	return body, nil
}
