package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caio-ishikawa/bountyboard/shared/models"
)

// Form drafts hold raw field text as typed. Coercion happens on submit.

type ProgramForm struct {
	Name      string
	Platform  string
	Scope     string
	MaxBounty string
	Status    string
	Visible   bool
}

func NewProgramForm() ProgramForm {
	return ProgramForm{Status: string(models.Active)}
}

// Reset restores the defaults and keeps the visibility.
func (f *ProgramForm) Reset() {
	visible := f.Visible
	*f = NewProgramForm()
	f.Visible = visible
}

func (f ProgramForm) ToCreate() (models.ProgramCreate, error) {
	maxBounty, err := optionalFloat("max_bounty", f.MaxBounty)
	if err != nil {
		return models.ProgramCreate{}, err
	}

	return models.ProgramCreate{
		Name:      strings.TrimSpace(f.Name),
		Platform:  strings.TrimSpace(f.Platform),
		Scope:     optionalString(f.Scope),
		MaxBounty: maxBounty,
		Status:    models.ProgramStatus(strings.TrimSpace(f.Status)),
	}, nil
}

type TargetForm struct {
	ProgramID string
	Domain    string
	IPAddress string
	TechStack string
	Notes     string
	Visible   bool
}

func NewTargetForm() TargetForm {
	return TargetForm{}
}

func (f *TargetForm) Reset() {
	visible := f.Visible
	*f = NewTargetForm()
	f.Visible = visible
}

func (f TargetForm) ToCreate() (models.TargetCreate, error) {
	programID, err := requiredID("program_id", f.ProgramID)
	if err != nil {
		return models.TargetCreate{}, err
	}

	return models.TargetCreate{
		ProgramID: programID,
		Domain:    strings.TrimSpace(f.Domain),
		IPAddress: optionalString(f.IPAddress),
		TechStack: optionalString(f.TechStack),
		Notes:     optionalString(f.Notes),
	}, nil
}

type VulnForm struct {
	TargetID          string
	Title             string
	Severity          string
	VulnerabilityType string
	Description       string
	Status            string
	BountyAmount      string
	ReportedAt        string
	Visible           bool
}

func NewVulnForm() VulnForm {
	return VulnForm{
		Severity: string(models.Medium),
		Status:   string(models.Draft),
	}
}

func (f *VulnForm) Reset() {
	visible := f.Visible
	*f = NewVulnForm()
	f.Visible = visible
}

func (f VulnForm) ToCreate() (models.VulnerabilityCreate, error) {
	targetID, err := requiredID("target_id", f.TargetID)
	if err != nil {
		return models.VulnerabilityCreate{}, err
	}

	bounty, err := optionalFloat("bounty_amount", f.BountyAmount)
	if err != nil {
		return models.VulnerabilityCreate{}, err
	}

	reportedAt, err := optionalTime("reported_at", f.ReportedAt)
	if err != nil {
		return models.VulnerabilityCreate{}, err
	}

	return models.VulnerabilityCreate{
		TargetID:          targetID,
		Title:             strings.TrimSpace(f.Title),
		Severity:          models.Severity(strings.ToLower(strings.TrimSpace(f.Severity))),
		VulnerabilityType: strings.TrimSpace(f.VulnerabilityType),
		Description:       optionalString(f.Description),
		Status:            models.VulnStatus(strings.ToLower(strings.TrimSpace(f.Status))),
		BountyAmount:      bounty,
		ReportedAt:        reportedAt,
	}, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func optionalFloat(field string, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", field, value)
	}

	return &f, nil
}

func requiredID(field string, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%s is required", field)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", field, value)
	}

	return id, nil
}

// optionalTime accepts a plain date (taken as UTC midnight) or an RFC3339 timestamp.
func optionalTime(field string, value string) (*time.Time, error) {
	t, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date like 2006-01-02, got %q", field, strings.TrimSpace(value))
	}

	return t, nil
}
