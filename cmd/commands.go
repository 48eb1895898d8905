package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/caio-ishikawa/bountyboard/shared/recon"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := apiClient.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		printStats(stats)
		return nil
	},
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List bug bounty programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		programs, err := apiClient.ListPrograms(cmd.Context())
		if err != nil {
			return err
		}

		printPrograms(dashboard.FilterPrograms(programs, search))
		return nil
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List recon targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var programID *int64
		if cmd.Flags().Changed("program") {
			id, _ := cmd.Flags().GetInt64("program")
			programID = &id
		}

		programs, err := apiClient.ListPrograms(cmd.Context())
		if err != nil {
			return err
		}

		targets, err := apiClient.ListTargets(cmd.Context(), programID)
		if err != nil {
			return err
		}

		printTargets(targets, programs)
		return nil
	},
}

var vulnsCmd = &cobra.Command{
	Use:   "vulns",
	Short: "List vulnerabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		severity, _ := cmd.Flags().GetString("severity")
		if severity != dashboard.SeverityAll {
			parsed, err := models.ParseSeverity(severity)
			if err != nil {
				return err
			}
			severity = string(parsed)
		}

		shell := dashboard.NewShell(logger)
		shell.VulnQuery = search
		shell.SeverityFilter = severity

		for _, res := range dashboard.LoadAll(cmd.Context(), apiClient, dashboard.TargetsCollection, dashboard.VulnerabilitiesCollection) {
			if res.Err != nil {
				return res.Err
			}
			shell.Apply(res)
		}

		printVulnerabilities(shell.VisibleVulnerabilities(), shell.Targets)
		return nil
	},
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Move a vulnerability to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("Invalid vulnerability id %s", args[0])
		}

		status, err := models.ParseVulnStatus(args[1])
		if err != nil {
			return err
		}

		vuln, err := findVulnerability(cmd.Context(), id)
		if err != nil {
			return err
		}

		update := statusUpdate(vuln, status, time.Now().UTC())
		updated, err := apiClient.UpdateVulnerability(cmd.Context(), id, update)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Vulnerability #%v is now %s", updated.ID, updated.Status)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a program, target or vulnerability",
}

var addProgramCmd = &cobra.Command{
	Use:   "program",
	Short: "Create a program",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		form := dashboard.NewProgramForm()
		form.Name, _ = flags.GetString("name")
		form.Platform, _ = flags.GetString("platform")
		form.Scope, _ = flags.GetString("scope")
		form.MaxBounty, _ = flags.GetString("max-bounty")
		if flags.Changed("status") {
			form.Status, _ = flags.GetString("status")
		}

		req, err := form.ToCreate()
		if err != nil {
			return err
		}

		program, err := apiClient.CreateProgram(cmd.Context(), req)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Created program #%v %s", program.ID, program.Name)
		return nil
	},
}

var addTargetCmd = &cobra.Command{
	Use:   "target",
	Short: "Create a target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		form := dashboard.NewTargetForm()
		form.ProgramID, _ = flags.GetString("program-id")
		form.Domain, _ = flags.GetString("domain")
		form.IPAddress, _ = flags.GetString("ip")
		form.TechStack, _ = flags.GetString("tech-stack")
		form.Notes, _ = flags.GetString("notes")

		if fingerprint, _ := flags.GetBool("fingerprint"); fingerprint && form.TechStack == "" {
			techStack, err := fingerprintDomain(cmd.Context(), form.Domain)
			if err != nil {
				pterm.Warning.Printfln("Could not fingerprint %s: %s", form.Domain, err.Error())
			} else {
				form.TechStack = techStack
			}
		}

		req, err := form.ToCreate()
		if err != nil {
			return err
		}

		target, err := apiClient.CreateTarget(cmd.Context(), req)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Created target #%v %s", target.ID, target.Domain)
		return nil
	},
}

var addVulnCmd = &cobra.Command{
	Use:   "vuln",
	Short: "Create a vulnerability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		form := dashboard.NewVulnForm()
		form.TargetID, _ = flags.GetString("target-id")
		form.Title, _ = flags.GetString("title")
		form.VulnerabilityType, _ = flags.GetString("type")
		form.Description, _ = flags.GetString("description")
		form.BountyAmount, _ = flags.GetString("bounty")
		form.ReportedAt, _ = flags.GetString("reported-at")
		if flags.Changed("severity") {
			form.Severity, _ = flags.GetString("severity")
		}
		if flags.Changed("status") {
			form.Status, _ = flags.GetString("status")
		}

		req, err := form.ToCreate()
		if err != nil {
			return err
		}

		vuln, err := apiClient.CreateVulnerability(cmd.Context(), req)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Created vulnerability #%v %s (%s)", vuln.ID, vuln.Title, vuln.Severity)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:       "delete <program|target|vuln> <id>",
	Short:     "Delete a program, target or vulnerability",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"program", "target", "vuln"},
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := parseKind(args[0])
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("Invalid id %s", args[1])
		}

		res := dashboard.Delete(cmd.Context(), apiClient, collection, id)
		if res.Err != nil {
			return res.Err
		}

		pterm.Success.Printfln("Deleted %s #%v", args[0], id)
		return nil
	},
}

func init() {
	programsCmd.Flags().StringP("search", "s", "", "Only show programs whose name or platform contains this text")

	targetsCmd.Flags().Int64P("program", "p", 0, "Only show targets of this program id")

	vulnsCmd.Flags().StringP("search", "s", "", "Only show vulnerabilities whose title or type contains this text")
	vulnsCmd.Flags().String("severity", dashboard.SeverityAll, "Only show this severity (critical, high, medium, low, info or all)")
	vulnsCmd.AddCommand(setStatusCmd)

	addProgramCmd.Flags().String("name", "", "Program name")
	addProgramCmd.Flags().String("platform", "", "Platform hosting the program, e.g. HackerOne")
	addProgramCmd.Flags().String("scope", "", "Scope description")
	addProgramCmd.Flags().String("max-bounty", "", "Maximum bounty paid by the program")
	addProgramCmd.Flags().String("status", string(models.Active), "Program status (active, paused, closed)")
	addProgramCmd.MarkFlagRequired("name")
	addProgramCmd.MarkFlagRequired("platform")

	addTargetCmd.Flags().String("program-id", "", "Parent program id")
	addTargetCmd.Flags().String("domain", "", "Target domain")
	addTargetCmd.Flags().String("ip", "", "IP address")
	addTargetCmd.Flags().String("tech-stack", "", "Comma separated technologies")
	addTargetCmd.Flags().String("notes", "", "Free form notes")
	addTargetCmd.Flags().Bool("fingerprint", false, "Detect the tech stack of the domain before saving")
	addTargetCmd.MarkFlagRequired("program-id")
	addTargetCmd.MarkFlagRequired("domain")

	addVulnCmd.Flags().String("target-id", "", "Affected target id")
	addVulnCmd.Flags().String("title", "", "Vulnerability title")
	addVulnCmd.Flags().String("severity", string(models.Medium), "Severity (critical, high, medium, low, info)")
	addVulnCmd.Flags().String("type", "", "Vulnerability class, e.g. XSS")
	addVulnCmd.Flags().String("description", "", "Description")
	addVulnCmd.Flags().String("status", string(models.Draft), "Status (draft, reported, triaged, resolved, duplicate)")
	addVulnCmd.Flags().String("bounty", "", "Bounty amount awarded")
	addVulnCmd.Flags().String("reported-at", "", "Date the report was submitted (2006-01-02)")
	addVulnCmd.MarkFlagRequired("target-id")
	addVulnCmd.MarkFlagRequired("title")
	addVulnCmd.MarkFlagRequired("type")

	addCmd.AddCommand(addProgramCmd, addTargetCmd, addVulnCmd)

	rootCmd.AddCommand(statsCmd, programsCmd, targetsCmd, vulnsCmd, addCmd, deleteCmd)
}

func parseKind(kind string) (dashboard.Collection, error) {
	switch kind {
	case "program", "programs":
		return dashboard.ProgramsCollection, nil
	case "target", "targets":
		return dashboard.TargetsCollection, nil
	case "vuln", "vulns", "vulnerability", "vulnerabilities":
		return dashboard.VulnerabilitiesCollection, nil
	default:
		return dashboard.StatsCollection, fmt.Errorf("Unknown kind %s: expected program, target or vuln", kind)
	}
}

func findVulnerability(ctx context.Context, id int64) (models.Vulnerability, error) {
	vulns, err := apiClient.ListVulnerabilities(ctx, nil)
	if err != nil {
		return models.Vulnerability{}, err
	}

	for _, vuln := range vulns {
		if vuln.ID == id {
			return vuln, nil
		}
	}

	return models.Vulnerability{}, fmt.Errorf("Could not find vulnerability %v", id)
}

// statusUpdate builds the full update body for a status change. Moving to reported
// stamps reported_at when it was never set.
func statusUpdate(vuln models.Vulnerability, status models.VulnStatus, now time.Time) models.VulnerabilityCreate {
	reportedAt := vuln.ReportedAt
	if status == models.Reported && reportedAt == nil {
		reportedAt = &now
	}

	return models.VulnerabilityCreate{
		TargetID:          vuln.TargetID,
		Title:             vuln.Title,
		Severity:          vuln.Severity,
		VulnerabilityType: vuln.VulnerabilityType,
		Description:       vuln.Description,
		Status:            status,
		BountyAmount:      vuln.BountyAmount,
		ReportedAt:        reportedAt,
	}
}

func fingerprintDomain(ctx context.Context, raw string) (string, error) {
	domain, err := recon.NormalizeDomain(raw)
	if err != nil {
		return "", err
	}

	fingerprinter, err := recon.NewFingerprinter(cfg.RequestTimeout())
	if err != nil {
		return "", err
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Fingerprinting %s", domain))
	technologies, err := fingerprinter.Technologies(ctx, domain)
	if err != nil {
		spinner.Fail(err.Error())
		return "", err
	}
	spinner.Success(fmt.Sprintf("Detected %v technologies", len(technologies)))

	return recon.TechStack(technologies), nil
}
