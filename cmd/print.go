package main

import (
	"fmt"

	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/charmbracelet/bubbles/table"
	"github.com/pterm/pterm"
)

func tableData(columns []table.Column, rows []table.Row) pterm.TableData {
	header := make([]string, 0, len(columns))
	for _, column := range columns {
		header = append(header, column.Title)
	}

	data := pterm.TableData{header}
	for _, row := range rows {
		data = append(data, row)
	}

	return data
}

func printTable(kind string, columns []table.Column, rows []table.Row) {
	if len(rows) == 0 {
		pterm.Info.Printfln("No %s found", kind)
		return
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData(columns, rows)).Render()
}

func printPrograms(programs []models.Program) {
	printTable("programs", ProgramColumns, ProgramRows(programs))
}

func printTargets(targets []models.Target, programs []models.Program) {
	printTable("targets", TargetColumns, TargetRows(targets, programs))
}

func printVulnerabilities(vulns []models.Vulnerability, targets []models.Target) {
	rows := VulnRows(vulns, targets)
	for i, vuln := range vulns {
		rows[i][2] = severityLabel(vuln.Severity)
	}

	printTable("vulnerabilities", VulnColumns, rows)
}

func printStats(stats models.Stats) {
	data := pterm.TableData{
		{"Programs", "Targets", "Vulnerabilities", "Total Bounties", "Avg Bounty", "This Month"},
		{
			fmt.Sprint(stats.TotalPrograms),
			fmt.Sprint(stats.TotalTargets),
			fmt.Sprint(stats.TotalVulnerabilities),
			dashboard.FormatMoney(stats.TotalBounties),
			dashboard.FormatMoney(dashboard.AverageBounty(stats)),
			fmt.Sprint(dashboard.ThisMonth(stats)),
		},
	}

	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func severityLabel(severity models.Severity) string {
	switch severity {
	case models.Critical, models.High:
		return pterm.FgRed.Sprint(string(severity))
	case models.Medium:
		return pterm.FgYellow.Sprint(string(severity))
	case models.Low:
		return pterm.FgBlue.Sprint(string(severity))
	default:
		return pterm.FgGray.Sprint(string(severity))
	}
}
