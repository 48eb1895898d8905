package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/caio-ishikawa/bountyboard/shared/recon"
	"github.com/charmbracelet/bubbles/table"
)

const (
	dateLayout = "2006-01-02"
	empty      = "-"
)

var (
	ProgramColumns = []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Name", Width: 22},
		{Title: "Platform", Width: 14},
		{Title: "Status", Width: 8},
		{Title: "Max Bounty", Width: 12},
		{Title: "Scope", Width: 30},
		{Title: "Created", Width: 10},
	}

	TargetColumns = []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Domain", Width: 30},
		{Title: "Root", Width: 18},
		{Title: "Program", Width: 18},
		{Title: "IP", Width: 15},
		{Title: "Tech Stack", Width: 24},
		{Title: "Created", Width: 10},
	}

	VulnColumns = []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: 28},
		{Title: "Severity", Width: 8},
		{Title: "Type", Width: 14},
		{Title: "Target", Width: 22},
		{Title: "Status", Width: 9},
		{Title: "Bounty", Width: 11},
		{Title: "Reported", Width: 10},
	}
)

func ProgramRows(programs []models.Program) []table.Row {
	rows := make([]table.Row, 0, len(programs))
	for _, program := range programs {
		rows = append(rows, table.Row{
			strconv.FormatInt(program.ID, 10),
			program.Name,
			program.Platform,
			string(program.Status),
			dashboard.FormatOptionalMoney(program.MaxBounty),
			optional(program.Scope),
			program.CreatedAt.Format(dateLayout),
		})
	}

	return rows
}

func TargetRows(targets []models.Target, programs []models.Program) []table.Row {
	rows := make([]table.Row, 0, len(targets))
	for _, target := range targets {
		root := recon.RegistrableDomain(target.Domain)
		if root == "" {
			root = empty
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(target.ID, 10),
			target.Domain,
			root,
			dashboard.ProgramName(programs, target.ProgramID),
			optional(target.IPAddress),
			optional(target.TechStack),
			target.CreatedAt.Format(dateLayout),
		})
	}

	return rows
}

func VulnRows(vulns []models.Vulnerability, targets []models.Target) []table.Row {
	rows := make([]table.Row, 0, len(vulns))
	for _, vuln := range vulns {
		reported := empty
		if vuln.ReportedAt != nil {
			reported = vuln.ReportedAt.Format(dateLayout)
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(vuln.ID, 10),
			vuln.Title,
			strings.ToUpper(string(vuln.Severity)),
			vuln.VulnerabilityType,
			dashboard.TargetDomain(targets, vuln.TargetID),
			string(vuln.Status),
			dashboard.FormatOptionalMoney(vuln.BountyAmount),
			reported,
		})
	}

	return rows
}

// rowID reads the id column of a row built by the functions above.
func rowID(row table.Row) (int64, error) {
	if len(row) == 0 {
		return 0, fmt.Errorf("No row selected")
	}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid row id %s", row[0])
	}

	return id, nil
}

// copyField is the value the copy key puts on the clipboard for a tab's row.
func copyField(tab dashboard.Tab, row table.Row) (string, bool) {
	if len(row) < 2 {
		return "", false
	}

	switch tab {
	case dashboard.ProgramsTab, dashboard.TargetsTab, dashboard.VulnerabilitiesTab:
		return row[1], true
	default:
		return "", false
	}
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return empty
	}
	return *s
}
