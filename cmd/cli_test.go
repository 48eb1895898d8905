package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type stubBackend struct {
	programs []models.Program
	targets  []models.Target
}

func (b *stubBackend) GetStats(context.Context) (models.Stats, error) {
	return models.Stats{TotalPrograms: len(b.programs)}, nil
}

func (b *stubBackend) ListPrograms(context.Context) ([]models.Program, error) {
	return b.programs, nil
}

func (b *stubBackend) ListTargets(context.Context, *int64) ([]models.Target, error) {
	return b.targets, nil
}

func (b *stubBackend) ListVulnerabilities(context.Context, *int64) ([]models.Vulnerability, error) {
	return nil, nil
}

func (b *stubBackend) CreateProgram(context.Context, models.ProgramCreate) (models.Program, error) {
	return models.Program{}, nil
}

func (b *stubBackend) CreateTarget(context.Context, models.TargetCreate) (models.Target, error) {
	return models.Target{}, nil
}

func (b *stubBackend) CreateVulnerability(context.Context, models.VulnerabilityCreate) (models.Vulnerability, error) {
	return models.Vulnerability{}, nil
}

func (b *stubBackend) DeleteProgram(context.Context, int64) error       { return nil }
func (b *stubBackend) DeleteTarget(context.Context, int64) error        { return nil }
func (b *stubBackend) DeleteVulnerability(context.Context, int64) error { return nil }

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// fetchedCollections runs cmd and collects the collections its fetch commands load.
func fetchedCollections(t *testing.T, cmd tea.Cmd) []dashboard.Collection {
	t.Helper()

	if cmd == nil {
		return nil
	}

	var ret []dashboard.Collection
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			ret = append(ret, fetchedCollections(t, sub)...)
		}
	case fetchMsg:
		ret = append(ret, msg.Collection)
	default:
		t.Fatalf("unexpected message %T", msg)
	}

	return ret
}

func newTestCLI(backend dashboard.Backend) *CLI {
	return NewCLI(backend, nil, themeByName("everforest"), zerolog.Nop())
}

func TestUpdateAppliesFetch(t *testing.T) {
	cli := newTestCLI(&stubBackend{})
	cli.switchTab(dashboard.ProgramsTab)

	programs := []models.Program{{ID: 1, Name: "Acme", Platform: "HackerOne", Status: models.Active}}
	cli.Update(fetchMsg{Collection: dashboard.ProgramsCollection, Programs: programs})

	if len(cli.shell.Programs) != 1 {
		t.Fatalf("expected programs to be applied, got %+v", cli.shell.Programs)
	}
	if rows := cli.table.Rows(); len(rows) != 1 || rows[0][1] != "Acme" {
		t.Fatalf("unexpected rows %v", rows)
	}

	cli.Update(fetchMsg{Collection: dashboard.ProgramsCollection, Err: errors.New("connection refused")})
	if len(cli.shell.Programs) != 1 {
		t.Fatalf("expected failed fetch to keep previous programs")
	}
	if !cli.statusErr || !strings.Contains(cli.status, "connection refused") {
		t.Fatalf("expected error status, got %q", cli.status)
	}
}

func TestUpdateCreateClosesFormAndRefetches(t *testing.T) {
	cli := newTestCLI(&stubBackend{})
	cli.switchTab(dashboard.ProgramsTab)

	cli.Update(keyPress("a"))
	if cli.form == nil || !cli.shell.ProgramForm.Visible {
		t.Fatalf("expected program form to open")
	}
	cli.shell.ProgramForm.Name = "Acme"

	_, cmd := cli.Update(mutationMsg{Operation: dashboard.CreateOperation, Collection: dashboard.ProgramsCollection, ID: 7})
	if cli.form != nil || cli.shell.ProgramForm.Visible {
		t.Fatalf("expected form to close after create")
	}
	if cli.shell.ProgramForm.Name != "" {
		t.Fatalf("expected draft to reset, got %q", cli.shell.ProgramForm.Name)
	}
	if cli.statusErr || cli.status != "Created program #7" {
		t.Fatalf("unexpected status %q", cli.status)
	}

	fetched := fetchedCollections(t, cmd)
	if len(fetched) != 2 {
		t.Fatalf("expected programs and stats re-fetch, got %v", fetched)
	}
}

func TestUpdateFailedCreateKeepsForm(t *testing.T) {
	cli := newTestCLI(&stubBackend{})
	cli.switchTab(dashboard.ProgramsTab)
	cli.Update(keyPress("a"))
	cli.shell.ProgramForm.Name = "Acme"

	_, cmd := cli.Update(mutationMsg{Operation: dashboard.CreateOperation, Collection: dashboard.ProgramsCollection, Err: errors.New("Error 400: Program platform is required")})
	if cmd != nil {
		t.Fatalf("expected no re-fetch after failure")
	}
	if cli.form == nil || cli.shell.ProgramForm.Name != "Acme" {
		t.Fatalf("expected form and draft to survive failure")
	}
	if !cli.statusErr || !strings.Contains(cli.status, "platform is required") {
		t.Fatalf("unexpected status %q", cli.status)
	}
}

func TestUpdateDeleteProgramRefetchesChildren(t *testing.T) {
	cli := newTestCLI(&stubBackend{})

	_, cmd := cli.Update(mutationMsg{Operation: dashboard.DeleteOperation, Collection: dashboard.ProgramsCollection, ID: 1})

	seen := make(map[dashboard.Collection]bool)
	for _, c := range fetchedCollections(t, cmd) {
		seen[c] = true
	}
	for _, c := range dashboard.Collections {
		if !seen[c] {
			t.Fatalf("expected %s to be re-fetched, got %v", c, seen)
		}
	}
}

func TestOpenTargetOnUnsupportedOS(t *testing.T) {
	backend := &stubBackend{}
	cli := newTestCLI(backend)
	cli.os = ""
	cli.osErr = errors.New("Unsupported OS: plan9")

	cli.switchTab(dashboard.TargetsTab)
	cli.Update(fetchMsg{Collection: dashboard.TargetsCollection, Targets: []models.Target{{ID: 1, ProgramID: 1, Domain: "acme.com"}}})

	cli.Update(keyPress("o"))
	if !cli.statusErr || cli.status != "Unsupported OS: plan9" {
		t.Fatalf("expected unsupported OS error, got %q", cli.status)
	}

	// The rest of the dashboard keeps working
	cli.Update(keyPress("2"))
	if cli.shell.Tab != dashboard.ProgramsTab {
		t.Fatalf("expected tab switch, got %s", cli.shell.Tab)
	}
}

type recordingCloser struct {
	closed int
}

func (r *recordingCloser) Close() error {
	r.closed++
	return nil
}

func TestCloseLog(t *testing.T) {
	closer := &recordingCloser{}
	logCloser = closer
	t.Cleanup(func() { logCloser = nil })

	closeLog()
	closeLog()

	if closer.closed != 1 {
		t.Fatalf("expected log to be closed once, got %v", closer.closed)
	}
}
