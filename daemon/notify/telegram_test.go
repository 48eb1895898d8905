package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caio-ishikawa/bountyboard/daemon/notify"
	"github.com/caio-ishikawa/bountyboard/shared/models"
)

func TestTelegramSendsSevereFindings(t *testing.T) {
	var received []notify.NotificationMessage
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg notify.NotificationMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("bad body: %s", err)
		}
		received = append(received, msg)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := notify.NewTelegramClient(42, "token")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	client = client.WithBaseURL(srv.URL)

	target := models.Target{ID: 1, Domain: "acme.com"}
	bounty := 1000.0
	critical := models.Vulnerability{Title: "RCE", Severity: models.Critical, VulnerabilityType: "RCE", BountyAmount: &bounty}
	low := models.Vulnerability{Title: "Banner", Severity: models.Low, VulnerabilityType: "Disclosure"}

	if err := client.VulnerabilityCreated(context.Background(), critical, target); err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := client.VulnerabilityCreated(context.Background(), low, target); err != nil {
		t.Fatalf("err: %s", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected only the critical finding to be sent, got %d messages", len(received))
	}
	if received[0].ChatID != 42 {
		t.Fatalf("unexpected chat id %v", received[0].ChatID)
	}
	if !strings.Contains(received[0].Text, "acme.com") || !strings.Contains(received[0].Text, "$1000.00") {
		t.Fatalf("unexpected message %q", received[0].Text)
	}
	if paths[0] != "/bottoken/sendMessage" {
		t.Fatalf("unexpected path %s", paths[0])
	}
}

func TestTelegramStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := notify.NewTelegramClient(1, "bad")
	client = client.WithBaseURL(srv.URL)

	if err := client.SendMessage(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestNewTelegramClientRequiresCredentials(t *testing.T) {
	if _, err := notify.NewTelegramClient(0, "token"); err == nil {
		t.Fatalf("expected missing chat id to be rejected")
	}
	if _, err := notify.NewTelegramClient(1, ""); err == nil {
		t.Fatalf("expected missing api key to be rejected")
	}
}
