package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/caio-ishikawa/bountyboard/shared/models"
)

var errBackend = errors.New("backend unavailable")

type fakeBackend struct {
	mu sync.Mutex

	stats    models.Stats
	programs []models.Program
	targets  []models.Target
	vulns    []models.Vulnerability

	failFetch  map[Collection]bool
	failCreate bool

	fetches        map[Collection]int
	createdTarget  *models.TargetCreate
	createdVuln    *models.VulnerabilityCreate
	createdProgram *models.ProgramCreate
	deleted        []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failFetch: make(map[Collection]bool),
		fetches:   make(map[Collection]int),
	}
}

func (f *fakeBackend) record(c Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches[c]++
	if f.failFetch[c] {
		return errBackend
	}
	return nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.fetches {
		total += n
	}
	if f.createdProgram != nil || f.createdTarget != nil || f.createdVuln != nil {
		total++
	}
	return total + len(f.deleted)
}

func (f *fakeBackend) GetStats(context.Context) (models.Stats, error) {
	if err := f.record(StatsCollection); err != nil {
		return models.Stats{}, err
	}
	return f.stats, nil
}

func (f *fakeBackend) ListPrograms(context.Context) ([]models.Program, error) {
	if err := f.record(ProgramsCollection); err != nil {
		return nil, err
	}
	return f.programs, nil
}

func (f *fakeBackend) ListTargets(context.Context, *int64) ([]models.Target, error) {
	if err := f.record(TargetsCollection); err != nil {
		return nil, err
	}
	return f.targets, nil
}

func (f *fakeBackend) ListVulnerabilities(context.Context, *int64) ([]models.Vulnerability, error) {
	if err := f.record(VulnerabilitiesCollection); err != nil {
		return nil, err
	}
	return f.vulns, nil
}

func (f *fakeBackend) CreateProgram(_ context.Context, program models.ProgramCreate) (models.Program, error) {
	f.createdProgram = &program
	if f.failCreate {
		return models.Program{}, errBackend
	}
	created := models.Program{ID: int64(len(f.programs) + 1), Name: program.Name, Platform: program.Platform, Status: program.Status}
	f.programs = append(f.programs, created)
	return created, nil
}

func (f *fakeBackend) CreateTarget(_ context.Context, target models.TargetCreate) (models.Target, error) {
	f.createdTarget = &target
	if f.failCreate {
		return models.Target{}, errBackend
	}
	created := models.Target{ID: int64(len(f.targets) + 1), ProgramID: target.ProgramID, Domain: target.Domain}
	f.targets = append(f.targets, created)
	return created, nil
}

func (f *fakeBackend) CreateVulnerability(_ context.Context, vuln models.VulnerabilityCreate) (models.Vulnerability, error) {
	f.createdVuln = &vuln
	if f.failCreate {
		return models.Vulnerability{}, errBackend
	}
	created := models.Vulnerability{ID: int64(len(f.vulns) + 1), TargetID: vuln.TargetID, Title: vuln.Title, Severity: vuln.Severity}
	f.vulns = append(f.vulns, created)
	return created, nil
}

func (f *fakeBackend) DeleteProgram(_ context.Context, id int64) error {
	return f.remove(id)
}

func (f *fakeBackend) DeleteTarget(_ context.Context, id int64) error {
	return f.remove(id)
}

func (f *fakeBackend) DeleteVulnerability(_ context.Context, id int64) error {
	return f.remove(id)
}

func (f *fakeBackend) remove(id int64) error {
	f.deleted = append(f.deleted, id)
	if f.failCreate {
		return errBackend
	}
	return nil
}
