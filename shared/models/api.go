package models

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const DateLayout = "2006-01-02"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Request bodies. Optional fields are sent as JSON null when unset.

type ProgramCreate struct {
	Name      string        `json:"name"`
	Platform  string        `json:"platform"`
	Scope     *string       `json:"scope"`
	MaxBounty *float64      `json:"max_bounty"`
	Status    ProgramStatus `json:"status"`
}

type TargetCreate struct {
	ProgramID int64   `json:"program_id"`
	Domain    string  `json:"domain"`
	IPAddress *string `json:"ip_address"`
	TechStack *string `json:"tech_stack"`
	Notes     *string `json:"notes"`
}

type VulnerabilityCreate struct {
	TargetID          int64      `json:"target_id"`
	Title             string     `json:"title"`
	Severity          Severity   `json:"severity"`
	VulnerabilityType string     `json:"vulnerability_type"`
	Description       *string    `json:"description"`
	Status            VulnStatus `json:"status"`
	BountyAmount      *float64   `json:"bounty_amount"`
	ReportedAt        *time.Time `json:"reported_at"`
}

// UnmarshalJSON accepts reported_at as null, "", a plain date or an RFC3339 timestamp.
func (v *VulnerabilityCreate) UnmarshalJSON(data []byte) error {
	var wire struct {
		TargetID          int64      `json:"target_id"`
		Title             string     `json:"title"`
		Severity          Severity   `json:"severity"`
		VulnerabilityType string     `json:"vulnerability_type"`
		Description       *string    `json:"description"`
		Status            VulnStatus `json:"status"`
		BountyAmount      *float64   `json:"bounty_amount"`
		ReportedAt        *string    `json:"reported_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var reportedAt *time.Time
	if wire.ReportedAt != nil {
		parsed, err := ParseDate(*wire.ReportedAt)
		if err != nil {
			return fmt.Errorf("reported_at: %w", err)
		}
		reportedAt = parsed
	}

	*v = VulnerabilityCreate{
		TargetID:          wire.TargetID,
		Title:             wire.Title,
		Severity:          wire.Severity,
		VulnerabilityType: wire.VulnerabilityType,
		Description:       wire.Description,
		Status:            wire.Status,
		BountyAmount:      wire.BountyAmount,
		ReportedAt:        reportedAt,
	}

	return nil
}

// ParseDate reads a plain date (UTC midnight) or an RFC3339 timestamp. Blank input is nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date like 2006-01-02", value)
	}

	return &t, nil
}

// Validate fills defaults and checks required fields, enums and money.
func (p *ProgramCreate) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("Program name is required")
	}
	if strings.TrimSpace(p.Platform) == "" {
		return fmt.Errorf("Program platform is required")
	}
	if p.Status == "" {
		p.Status = Active
	}
	status, err := ParseProgramStatus(string(p.Status))
	if err != nil {
		return err
	}
	p.Status = status

	if p.MaxBounty != nil && *p.MaxBounty < 0 {
		return fmt.Errorf("max_bounty must not be negative")
	}

	return nil
}

func (t *TargetCreate) Validate() error {
	if t.ProgramID <= 0 {
		return fmt.Errorf("program_id is required")
	}
	if strings.TrimSpace(t.Domain) == "" {
		return fmt.Errorf("Target domain is required")
	}

	return nil
}

func (v *VulnerabilityCreate) Validate() error {
	if v.TargetID <= 0 {
		return fmt.Errorf("target_id is required")
	}
	if strings.TrimSpace(v.Title) == "" {
		return fmt.Errorf("Vulnerability title is required")
	}
	if strings.TrimSpace(v.VulnerabilityType) == "" {
		return fmt.Errorf("vulnerability_type is required")
	}

	severity, err := ParseSeverity(string(v.Severity))
	if err != nil {
		return err
	}
	v.Severity = severity

	if v.Status == "" {
		v.Status = Draft
	}
	status, err := ParseVulnStatus(string(v.Status))
	if err != nil {
		return err
	}
	v.Status = status

	if v.BountyAmount != nil && *v.BountyAmount < 0 {
		return fmt.Errorf("bounty_amount must not be negative")
	}

	return nil
}
