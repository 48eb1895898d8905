package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/caio-ishikawa/bountyboard/shared/models"
	jsoniter "github.com/json-iterator/go"
)

const defaultBaseURL = "https://api.telegram.org"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Notifier is told about every newly created vulnerability.
type Notifier interface {
	VulnerabilityCreated(ctx context.Context, vuln models.Vulnerability, target models.Target) error
}

type Nop struct{}

func (Nop) VulnerabilityCreated(context.Context, models.Vulnerability, models.Target) error {
	return nil
}

type NotificationMessage struct {
	ChatID int    `json:"chat_id"`
	Text   string `json:"text"`
}

type TelegramClient struct {
	chatID     int
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(chatID int, apiKey string) (TelegramClient, error) {
	if chatID == 0 {
		return TelegramClient{}, fmt.Errorf("Failed to create telegram client: No chat ID")
	}

	if apiKey == "" {
		return TelegramClient{}, fmt.Errorf("Failed to create telegram client: No API key")
	}

	return TelegramClient{
		chatID:     chatID,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// WithBaseURL points the client at a different Telegram API host.
func (t TelegramClient) WithBaseURL(baseURL string) TelegramClient {
	t.baseURL = baseURL
	return t
}

// ShouldNotify reports whether a finding is severe enough to page on.
func ShouldNotify(severity models.Severity) bool {
	return severity == models.Critical || severity == models.High
}

func CraftMessage(vuln models.Vulnerability, target models.Target) string {
	msg := fmt.Sprintf("🚨NEW %s FINDING ON %s🚨\n%s (%s)", vuln.Severity, target.Domain, vuln.Title, vuln.VulnerabilityType)
	if vuln.BountyAmount != nil {
		msg = fmt.Sprintf("%s\nBounty: $%.2f", msg, *vuln.BountyAmount)
	}

	return msg
}

func (t TelegramClient) VulnerabilityCreated(ctx context.Context, vuln models.Vulnerability, target models.Target) error {
	if !ShouldNotify(vuln.Severity) {
		return nil
	}

	return t.SendMessage(ctx, CraftMessage(vuln, target))
}

func (t TelegramClient) SendMessage(ctx context.Context, text string) error {
	body := NotificationMessage{
		ChatID: t.chatID,
		Text:   text,
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("Failed to marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("Failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Failed to send request to telegram API: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("Unexpected status code from telegram message API: %v", res.StatusCode)
	}

	return nil
}
