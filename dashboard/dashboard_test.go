package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/rs/zerolog"
)

func intPtr(i int) *int { return &i }

func TestFilterPrograms(t *testing.T) {
	programs := []models.Program{
		{ID: 1, Name: "Acme", Platform: "HackerOne"},
		{ID: 2, Name: "Globex", Platform: "Bugcrowd"},
		{ID: 3, Name: "Oneida", Platform: "Intigriti"},
	}

	tests := []struct {
		query string
		ids   []int64
	}{
		{"", []int64{1, 2, 3}},
		{"ONE", []int64{1, 3}},
		{"crowd", []int64{2}},
		{"nothing", []int64{}},
	}

	for _, tt := range tests {
		got := FilterPrograms(programs, tt.query)
		if len(got) != len(tt.ids) {
			t.Fatalf("query %q: expected %v programs, got %+v", tt.query, len(tt.ids), got)
		}
		for i, id := range tt.ids {
			if got[i].ID != id {
				t.Fatalf("query %q: expected id %v at %v, got %v", tt.query, id, i, got[i].ID)
			}
		}
	}
}

func TestFilterVulnerabilities(t *testing.T) {
	vulns := []models.Vulnerability{
		{ID: 1, Title: "Stored XSS", VulnerabilityType: "XSS", Severity: models.High},
		{ID: 2, Title: "Login bypass", VulnerabilityType: "Auth", Severity: models.Critical},
		{ID: 3, Title: "Reflected xss", VulnerabilityType: "XSS", Severity: models.Medium},
	}

	if got := FilterVulnerabilities(vulns, "xss", SeverityAll); len(got) != 2 {
		t.Fatalf("expected 2 xss findings, got %+v", got)
	}

	got := FilterVulnerabilities(vulns, "xss", string(models.High))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only the high xss finding, got %+v", got)
	}

	if got := FilterVulnerabilities(vulns, "", string(models.Low)); len(got) != 0 {
		t.Fatalf("expected no low findings, got %+v", got)
	}

	if got := FilterVulnerabilities(vulns, "auth", SeverityAll); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected type to be searched, got %+v", got)
	}
}

func TestNextSeverityFilter(t *testing.T) {
	seen := []string{}
	current := SeverityAll
	for range len(models.Severities) + 1 {
		current = NextSeverityFilter(current)
		seen = append(seen, current)
	}

	expected := []string{"critical", "high", "medium", "low", "info", SeverityAll}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Fatalf("unexpected cycle %v", seen)
		}
	}
}

func TestAverageBounty(t *testing.T) {
	if avg := AverageBounty(models.Stats{}); avg != 0 {
		t.Fatalf("expected 0 without vulnerabilities, got %v", avg)
	}

	stats := models.Stats{TotalVulnerabilities: 4, TotalBounties: 1750.5}
	if avg := AverageBounty(stats); avg != 437.625 {
		t.Fatalf("unexpected average %v", avg)
	}
	if got := FormatMoney(AverageBounty(models.Stats{TotalVulnerabilities: 3, TotalBounties: 1750.5})); got != "$583.50" {
		t.Fatalf("unexpected formatting %s", got)
	}
}

func TestThisMonth(t *testing.T) {
	if got := ThisMonth(models.Stats{TotalVulnerabilities: 7}); got != 7 {
		t.Fatalf("expected fallback to total, got %v", got)
	}
	if got := ThisMonth(models.Stats{TotalVulnerabilities: 7, VulnerabilitiesThisMonth: intPtr(2)}); got != 2 {
		t.Fatalf("expected monthly count, got %v", got)
	}
}

func TestLoadAppliesEachCollectionIndependently(t *testing.T) {
	backend := newFakeBackend()
	backend.stats = models.Stats{TotalPrograms: 1}
	backend.targets = []models.Target{{ID: 1, Domain: "acme.com"}}
	backend.failFetch[ProgramsCollection] = true

	shell := NewShell(zerolog.Nop())
	shell.Programs = []models.Program{{ID: 9, Name: "stale"}}

	shell.Load(context.Background(), backend)

	if shell.Stats.TotalPrograms != 1 {
		t.Fatalf("expected stats to be applied")
	}
	if len(shell.Targets) != 1 {
		t.Fatalf("expected targets to be applied")
	}
	if len(shell.Programs) != 1 || shell.Programs[0].Name != "stale" {
		t.Fatalf("failed fetch must keep previous programs, got %+v", shell.Programs)
	}
	if shell.Vulnerabilities == nil {
		t.Fatalf("expected an empty, non-nil vulnerability list")
	}
	for _, c := range Collections {
		if backend.fetches[c] != 1 {
			t.Fatalf("expected one fetch for %s, got %v", c, backend.fetches[c])
		}
	}
}

func TestSubmitTargetCoercesAndRefetches(t *testing.T) {
	backend := newFakeBackend()
	shell := NewShell(zerolog.Nop())
	shell.SetTab(TargetsTab)
	shell.ToggleForm()
	shell.TargetForm.ProgramID = "3"
	shell.TargetForm.Domain = "api.acme.com"

	if err := shell.Submit(context.Background(), backend, TargetsCollection); err != nil {
		t.Fatalf("err: %s", err)
	}

	if backend.createdTarget == nil || backend.createdTarget.ProgramID != 3 {
		t.Fatalf("expected program_id 3, got %+v", backend.createdTarget)
	}
	if backend.createdTarget.IPAddress != nil {
		t.Fatalf("expected empty ip_address to be sent as null")
	}
	if shell.TargetForm.Visible || shell.TargetForm.Domain != "" {
		t.Fatalf("expected form to be reset and hidden, got %+v", shell.TargetForm)
	}
	if backend.fetches[TargetsCollection] != 1 || backend.fetches[StatsCollection] != 1 {
		t.Fatalf("expected targets and stats to be re-fetched, got %v", backend.fetches)
	}
	if backend.fetches[ProgramsCollection] != 0 {
		t.Fatalf("did not expect programs to be re-fetched")
	}
	if len(shell.Targets) != 1 {
		t.Fatalf("expected new target in state, got %+v", shell.Targets)
	}
}

func TestSubmitProgramCoercion(t *testing.T) {
	backend := newFakeBackend()
	shell := NewShell(zerolog.Nop())
	shell.ProgramForm = ProgramForm{Name: "Acme", Platform: "HackerOne", MaxBounty: "500", Status: "active", Visible: true}

	if err := shell.Submit(context.Background(), backend, ProgramsCollection); err != nil {
		t.Fatalf("err: %s", err)
	}

	req := backend.createdProgram
	if req == nil || req.MaxBounty == nil || *req.MaxBounty != 500.0 {
		t.Fatalf("expected max_bounty 500.0, got %+v", req)
	}
	if req.Scope != nil {
		t.Fatalf("expected empty scope to be sent as null")
	}
	if shell.ProgramForm.Status != string(models.Active) {
		t.Fatalf("expected status default after reset, got %q", shell.ProgramForm.Status)
	}
}

func TestSubmitInvalidNumberNeverReachesBackend(t *testing.T) {
	backend := newFakeBackend()
	shell := NewShell(zerolog.Nop())
	draft := ProgramForm{Name: "Acme", Platform: "HackerOne", MaxBounty: "abc", Status: "active", Visible: true}
	shell.ProgramForm = draft

	if err := shell.Submit(context.Background(), backend, ProgramsCollection); err == nil {
		t.Fatalf("expected coercion error")
	}

	if backend.calls() != 0 {
		t.Fatalf("expected no requests, got %v", backend.calls())
	}
	if shell.ProgramForm != draft {
		t.Fatalf("expected draft to be kept, got %+v", shell.ProgramForm)
	}
	if shell.LastError == nil {
		t.Fatalf("expected failure to be surfaced")
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	backend := newFakeBackend()
	backend.failCreate = true
	shell := NewShell(zerolog.Nop())
	shell.VulnForm.TargetID = "1"
	shell.VulnForm.Title = "IDOR"
	shell.VulnForm.VulnerabilityType = "Access control"
	shell.VulnForm.Visible = true

	if err := shell.Submit(context.Background(), backend, VulnerabilitiesCollection); err == nil {
		t.Fatalf("expected error")
	}

	if !shell.VulnForm.Visible || shell.VulnForm.Title != "IDOR" {
		t.Fatalf("expected draft and visibility to be kept, got %+v", shell.VulnForm)
	}
	if len(backend.fetches) != 0 {
		t.Fatalf("did not expect re-fetches after failure, got %v", backend.fetches)
	}
}

func TestVulnFormDefaultsAndDates(t *testing.T) {
	form := NewVulnForm()
	form.TargetID = "2"
	form.Title = "SSRF"
	form.VulnerabilityType = "SSRF"
	form.BountyAmount = "1200.50"
	form.ReportedAt = "2026-05-04"

	req, err := form.ToCreate()
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	if req.Severity != models.Medium || req.Status != models.Draft {
		t.Fatalf("unexpected defaults %+v", req)
	}
	if req.BountyAmount == nil || *req.BountyAmount != 1200.5 {
		t.Fatalf("unexpected bounty %v", req.BountyAmount)
	}
	expected := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	if req.ReportedAt == nil || !req.ReportedAt.Equal(expected) {
		t.Fatalf("unexpected reported_at %v", req.ReportedAt)
	}

	form.ReportedAt = "last week"
	if _, err := form.ToCreate(); err == nil {
		t.Fatalf("expected date error")
	}

	form.ReportedAt = ""
	form.TargetID = ""
	if _, err := form.ToCreate(); err == nil {
		t.Fatalf("expected missing target_id error")
	}
}

func TestRemoveRefetchesOwningCollection(t *testing.T) {
	backend := newFakeBackend()
	shell := NewShell(zerolog.Nop())

	if err := shell.Remove(context.Background(), backend, VulnerabilitiesCollection, 5); err != nil {
		t.Fatalf("err: %s", err)
	}

	if len(backend.deleted) != 1 || backend.deleted[0] != 5 {
		t.Fatalf("unexpected deletes %v", backend.deleted)
	}
	if backend.fetches[VulnerabilitiesCollection] != 1 || backend.fetches[StatsCollection] != 1 {
		t.Fatalf("expected vulnerabilities and stats re-fetch, got %v", backend.fetches)
	}
}

func TestRemoveParentRefetchesChildren(t *testing.T) {
	var inputs = []struct {
		collection Collection
		expected   []Collection
	}{
		{ProgramsCollection, []Collection{ProgramsCollection, TargetsCollection, VulnerabilitiesCollection, StatsCollection}},
		{TargetsCollection, []Collection{TargetsCollection, VulnerabilitiesCollection, StatsCollection}},
		{VulnerabilitiesCollection, []Collection{VulnerabilitiesCollection, StatsCollection}},
	}

	for _, in := range inputs {
		backend := newFakeBackend()
		shell := NewShell(zerolog.Nop())
		shell.Targets = []models.Target{{ID: 1, ProgramID: 1, Domain: "acme.com"}}
		shell.Vulnerabilities = []models.Vulnerability{{ID: 1, TargetID: 1, Title: "SQLi"}}

		if err := shell.Remove(context.Background(), backend, in.collection, 1); err != nil {
			t.Fatalf("%s: err: %s", in.collection, err)
		}

		for _, c := range in.expected {
			if backend.fetches[c] != 1 {
				t.Fatalf("%s: expected %s re-fetch, got %v", in.collection, c, backend.fetches)
			}
		}
		if len(backend.fetches) != len(in.expected) {
			t.Fatalf("%s: unexpected re-fetches %v", in.collection, backend.fetches)
		}

		if in.collection == ProgramsCollection && (len(shell.Targets) != 0 || len(shell.Vulnerabilities) != 0) {
			t.Fatalf("expected cascaded rows to be cleared, got %+v %+v", shell.Targets, shell.Vulnerabilities)
		}
	}
}

func TestCreateDoesNotRefetchChildren(t *testing.T) {
	refetch := Refetches(CreateOperation, ProgramsCollection)
	if len(refetch) != 2 || refetch[0] != ProgramsCollection || refetch[1] != StatsCollection {
		t.Fatalf("unexpected re-fetches %v", refetch)
	}
}

func TestToggleFormKeepsDraft(t *testing.T) {
	shell := NewShell(zerolog.Nop())
	shell.SetTab(ProgramsTab)

	shell.ToggleForm()
	shell.ProgramForm.Name = "Acme"
	shell.ToggleForm()

	if shell.FormVisible() {
		t.Fatalf("expected form to be hidden")
	}
	if shell.ProgramForm.Name != "Acme" {
		t.Fatalf("expected draft to survive toggling")
	}

	shell.SetTab(DashboardTab)
	shell.ToggleForm()
	if shell.FormVisible() {
		t.Fatalf("dashboard tab has no form")
	}
}
