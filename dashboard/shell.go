// Package dashboard holds the state behind the terminal dashboard: fetched collections,
// form drafts, search filters and the results of create and delete requests.
// It never touches the terminal so it can be driven from tests.
package dashboard

import (
	"context"

	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/rs/zerolog"
)

type Tab int

const (
	DashboardTab Tab = iota
	ProgramsTab
	TargetsTab
	VulnerabilitiesTab
)

var Tabs = []Tab{DashboardTab, ProgramsTab, TargetsTab, VulnerabilitiesTab}

func (t Tab) String() string {
	switch t {
	case ProgramsTab:
		return "Programs"
	case TargetsTab:
		return "Targets"
	case VulnerabilitiesTab:
		return "Vulnerabilities"
	default:
		return "Dashboard"
	}
}

// Collection returns the collection listed on the tab. The dashboard tab has none.
func (t Tab) Collection() (Collection, bool) {
	switch t {
	case ProgramsTab:
		return ProgramsCollection, true
	case TargetsTab:
		return TargetsCollection, true
	case VulnerabilitiesTab:
		return VulnerabilitiesCollection, true
	default:
		return StatsCollection, false
	}
}

// Collection identifies one of the four server collections the shell mirrors.
type Collection int

const (
	StatsCollection Collection = iota
	ProgramsCollection
	TargetsCollection
	VulnerabilitiesCollection
)

var Collections = []Collection{StatsCollection, ProgramsCollection, TargetsCollection, VulnerabilitiesCollection}

func (c Collection) String() string {
	switch c {
	case ProgramsCollection:
		return "programs"
	case TargetsCollection:
		return "targets"
	case VulnerabilitiesCollection:
		return "vulnerabilities"
	default:
		return "stats"
	}
}

// Backend is the subset of the REST client the shell needs.
type Backend interface {
	GetStats(ctx context.Context) (models.Stats, error)
	ListPrograms(ctx context.Context) ([]models.Program, error)
	ListTargets(ctx context.Context, programID *int64) ([]models.Target, error)
	ListVulnerabilities(ctx context.Context, targetID *int64) ([]models.Vulnerability, error)
	CreateProgram(ctx context.Context, program models.ProgramCreate) (models.Program, error)
	CreateTarget(ctx context.Context, target models.TargetCreate) (models.Target, error)
	CreateVulnerability(ctx context.Context, vuln models.VulnerabilityCreate) (models.Vulnerability, error)
	DeleteProgram(ctx context.Context, id int64) error
	DeleteTarget(ctx context.Context, id int64) error
	DeleteVulnerability(ctx context.Context, id int64) error
}

type Shell struct {
	Tab Tab

	Stats           models.Stats
	Programs        []models.Program
	Targets         []models.Target
	Vulnerabilities []models.Vulnerability

	ProgramForm ProgramForm
	TargetForm  TargetForm
	VulnForm    VulnForm

	ProgramQuery   string
	VulnQuery      string
	SeverityFilter string

	// Most recent failed request, cleared by the next success.
	LastError error

	log zerolog.Logger
}

func NewShell(logger zerolog.Logger) *Shell {
	return &Shell{
		Tab:             DashboardTab,
		Programs:        make([]models.Program, 0),
		Targets:         make([]models.Target, 0),
		Vulnerabilities: make([]models.Vulnerability, 0),
		ProgramForm:     NewProgramForm(),
		TargetForm:      NewTargetForm(),
		VulnForm:        NewVulnForm(),
		SeverityFilter:  SeverityAll,
		log:             logger,
	}
}

func (s *Shell) SetTab(tab Tab) {
	s.Tab = tab
}

func (s *Shell) NextTab() {
	s.Tab = Tabs[(int(s.Tab)+1)%len(Tabs)]
}

// ToggleForm flips the visibility of the form owned by the active tab. Drafts survive.
func (s *Shell) ToggleForm() {
	switch s.Tab {
	case ProgramsTab:
		s.ProgramForm.Visible = !s.ProgramForm.Visible
	case TargetsTab:
		s.TargetForm.Visible = !s.TargetForm.Visible
	case VulnerabilitiesTab:
		s.VulnForm.Visible = !s.VulnForm.Visible
	}
}

func (s *Shell) FormVisible() bool {
	switch s.Tab {
	case ProgramsTab:
		return s.ProgramForm.Visible
	case TargetsTab:
		return s.TargetForm.Visible
	case VulnerabilitiesTab:
		return s.VulnForm.Visible
	default:
		return false
	}
}

func (s *Shell) VisiblePrograms() []models.Program {
	return FilterPrograms(s.Programs, s.ProgramQuery)
}

func (s *Shell) VisibleVulnerabilities() []models.Vulnerability {
	return FilterVulnerabilities(s.Vulnerabilities, s.VulnQuery, s.SeverityFilter)
}

func (s *Shell) CycleSeverityFilter() {
	s.SeverityFilter = NextSeverityFilter(s.SeverityFilter)
}
