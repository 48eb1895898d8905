package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/caio-ishikawa/bountyboard/shared/recon"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

const recentLimit = 5

type fetchMsg dashboard.FetchResult

type mutationMsg dashboard.MutationResult

type fingerprintMsg struct {
	domain    string
	techStack string
	err       error
}

type keyMap struct {
	Tabs        key.Binding
	NextTab     key.Binding
	Form        key.Binding
	Delete      key.Binding
	Search      key.Binding
	Severity    key.Binding
	Reload      key.Binding
	Copy        key.Binding
	Open        key.Binding
	Fingerprint key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tabs, k.Form, k.Delete, k.Search, k.Severity, k.Reload, k.Copy, k.Open, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tabs, k.NextTab, k.Reload, k.Quit},
		{k.Form, k.Delete, k.Fingerprint},
		{k.Search, k.Severity, k.Copy, k.Open},
	}
}

var keys = keyMap{
	Tabs:        key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "tabs")),
	NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	Form:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Severity:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "severity")),
	Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
	Open:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Fingerprint: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "fingerprint")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type CLI struct {
	shell         *dashboard.Shell
	backend       dashboard.Backend
	fingerprinter *recon.Fingerprinter
	table         table.Model
	search        textinput.Model
	searching     bool
	form          *formModel
	help          help.Model
	keys          keyMap
	theme         Theme
	os            OperatingSystem
	osErr         error
	status        string
	statusErr     bool
	log           zerolog.Logger
}

// NewCLI builds the dashboard model. An unsupported OS only disables opening targets.
func NewCLI(backend dashboard.Backend, fingerprinter *recon.Fingerprinter, theme Theme, logger zerolog.Logger) *CLI {
	operatingSystem, osErr := currentOS()
	if osErr != nil {
		logger.Warn().Err(osErr).Msg("Opening targets disabled")
	}

	mainTable := table.New(table.WithHeight(tableHeight), table.WithFocused(true))

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"
	search.CharLimit = 128

	return &CLI{
		shell:         dashboard.NewShell(logger),
		backend:       backend,
		fingerprinter: fingerprinter,
		table:         mainTable,
		search:        search,
		help:          help.New(),
		keys:          keys,
		theme:         theme,
		os:            operatingSystem,
		osErr:         osErr,
		log:           logger,
	}
}

func (c *CLI) Init() tea.Cmd {
	return c.fetch(dashboard.Collections...)
}

// fetch issues one command per collection. Responses are applied as they arrive.
func (c *CLI) fetch(collections ...dashboard.Collection) tea.Cmd {
	backend := c.backend

	cmds := make([]tea.Cmd, 0, len(collections))
	for _, collection := range collections {
		cmds = append(cmds, func() tea.Msg {
			return fetchMsg(dashboard.Fetch(context.Background(), backend, collection))
		})
	}

	return tea.Batch(cmds...)
}

func (c *CLI) create(collection dashboard.Collection) tea.Cmd {
	// Snapshot so the request sees the draft as it was on submit
	snapshot := *c.shell
	backend := c.backend

	return func() tea.Msg {
		return mutationMsg(snapshot.Create(context.Background(), backend, collection))
	}
}

func (c *CLI) delete(collection dashboard.Collection, id int64) tea.Cmd {
	backend := c.backend

	return func() tea.Msg {
		return mutationMsg(dashboard.Delete(context.Background(), backend, collection, id))
	}
}

func (c *CLI) fingerprint(domain string) tea.Cmd {
	fingerprinter := c.fingerprinter

	return func() tea.Msg {
		technologies, err := fingerprinter.Technologies(context.Background(), domain)
		return fingerprintMsg{domain: domain, techStack: recon.TechStack(technologies), err: err}
	}
}

func (c *CLI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.help.Width = msg.Width
		if height := msg.Height - 12; height > 3 {
			c.table.SetHeight(min(height, tableHeight*2))
		}
		return c, nil
	case fetchMsg:
		res := dashboard.FetchResult(msg)
		c.shell.Apply(res)
		if res.Err != nil {
			c.setError(fmt.Sprintf("Failed to load %s: %s", res.Collection, res.Err.Error()))
		}
		c.refreshTable()
		return c, nil
	case mutationMsg:
		return c.handleMutation(dashboard.MutationResult(msg))
	case fingerprintMsg:
		return c.handleFingerprint(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return c, tea.Quit
		}

		if c.form != nil {
			return c.updateForm(msg)
		}

		if c.searching {
			return c.updateSearch(msg)
		}

		switch msg.String() {
		case "1", "2", "3", "4":
			if m, cmd, skip := c.handleKeyNumber(msg.String()); !skip {
				return m, cmd
			}
		case "tab":
			if m, cmd, skip := c.handleKeyTab(); !skip {
				return m, cmd
			}
		case "a":
			if m, cmd, skip := c.handleKeyA(); !skip {
				return m, cmd
			}
		case "d":
			if m, cmd, skip := c.handleKeyD(); !skip {
				return m, cmd
			}
		case "/":
			if m, cmd, skip := c.handleKeySlash(); !skip {
				return m, cmd
			}
		case "f":
			if m, cmd, skip := c.handleKeyF(); !skip {
				return m, cmd
			}
		case "r":
			if m, cmd, skip := c.handleKeyR(); !skip {
				return m, cmd
			}
		case "y":
			if m, cmd, skip := c.handleKeyY(); !skip {
				return m, cmd
			}
		case "o":
			if m, cmd, skip := c.handleKeyO(); !skip {
				return m, cmd
			}
		case "?":
			c.help.ShowAll = !c.help.ShowAll
			return c, nil
		case "q":
			return c, tea.Quit
		}
	}
	c.table, cmd = c.table.Update(msg)

	return c, cmd
}

func (c *CLI) handleMutation(res dashboard.MutationResult) (tea.Model, tea.Cmd) {
	refetch := c.shell.ApplyMutation(res)
	if res.Err != nil {
		c.setError(c.shell.LastError.Error())
		return c, nil
	}

	name := strings.TrimSuffix(res.Collection.String(), "s")
	if res.Operation == dashboard.CreateOperation {
		c.setStatus(fmt.Sprintf("Created %s #%v", name, res.ID))
	} else {
		c.setStatus(fmt.Sprintf("Deleted %s #%v", name, res.ID))
	}

	c.syncForm()
	c.refreshTable()

	return c, c.fetch(refetch...)
}

func (c *CLI) handleFingerprint(msg fingerprintMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		c.log.Error().Err(msg.err).Str("domain", msg.domain).Msg("Failed to fingerprint target")
		c.setError(fmt.Sprintf("Failed to fingerprint %s: %s", msg.domain, msg.err.Error()))
		return c, nil
	}

	if msg.techStack == "" {
		c.setStatus(fmt.Sprintf("No technologies detected on %s", msg.domain))
		return c, nil
	}

	c.shell.TargetForm.TechStack = msg.techStack
	if c.form != nil && c.form.collection == dashboard.TargetsCollection {
		c.form.load(c.shell)
	}
	c.setStatus(fmt.Sprintf("Detected %s", msg.techStack))

	return c, nil
}

// syncForm matches the open form to the active tab's form visibility.
func (c *CLI) syncForm() {
	collection, ok := c.shell.Tab.Collection()
	if !ok || !c.shell.FormVisible() {
		c.form = nil
		return
	}

	if c.form == nil || c.form.collection != collection {
		form := newForm(collection, c.shell)
		c.form = &form
	}
}

func (c *CLI) refreshTable() {
	var columns []table.Column
	var rows []table.Row

	switch c.shell.Tab {
	case dashboard.ProgramsTab:
		columns = ProgramColumns
		rows = ProgramRows(c.shell.VisiblePrograms())
	case dashboard.TargetsTab:
		columns = TargetColumns
		rows = TargetRows(c.shell.Targets, c.shell.Programs)
	case dashboard.VulnerabilitiesTab:
		columns = VulnColumns
		rows = VulnRows(c.shell.VisibleVulnerabilities(), c.shell.Targets)
	default:
		return
	}

	// Rows must never be rendered against a column set of a different width
	c.table.SetRows(nil)
	c.table.SetColumns(columns)
	c.table.SetRows(rows)
	c.table.SetCursor(c.table.Cursor())
}

func (c *CLI) setStatus(status string) {
	c.status = status
	c.statusErr = false
}

func (c *CLI) setError(status string) {
	c.status = status
	c.statusErr = true
}

func (c *CLI) View() string {
	sections := []string{c.tabsView(), ""}

	if c.shell.Tab == dashboard.DashboardTab {
		sections = append(sections, c.overviewView())
	} else {
		c.table.SetStyles(c.theme.tableStyles(c.form == nil))
		box := c.theme.boxStyles().Active
		if c.form != nil {
			box = c.theme.boxStyles().Inactive
		}

		body := box.Render(c.table.View())
		if c.form != nil {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, c.form.view(c.theme))
		}
		sections = append(sections, body, c.filterView())
	}

	sections = append(sections, c.statusView(), c.help.View(c.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (c *CLI) tabsView() string {
	tabs := make([]string, 0, len(dashboard.Tabs))
	for i, tab := range dashboard.Tabs {
		label := fmt.Sprintf("%v %s", i+1, tab)
		tabs = append(tabs, c.theme.tabStyle(tab == c.shell.Tab).Render(label))
	}

	title := c.theme.statusStyle().Bold(true).Render("Bug Bounty Recon  ")
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title}, tabs...)...)
}

func (c *CLI) overviewView() string {
	stats := c.shell.Stats
	card := func(label string, value string) string {
		return c.theme.cardStyle().Render(lipgloss.JoinVertical(
			lipgloss.Left,
			c.theme.labelStyle().Render(label),
			lipgloss.NewStyle().Bold(true).Render(value),
		))
	}

	totals := lipgloss.JoinHorizontal(
		lipgloss.Top,
		card("Programs", fmt.Sprint(stats.TotalPrograms)),
		card("Targets", fmt.Sprint(stats.TotalTargets)),
		card("Vulnerabilities", fmt.Sprint(stats.TotalVulnerabilities)),
		card("Total Bounties", dashboard.FormatMoney(stats.TotalBounties)),
	)

	quick := lipgloss.JoinHorizontal(
		lipgloss.Top,
		card("Avg Bounty", dashboard.FormatMoney(dashboard.AverageBounty(stats))),
		card("This Month", fmt.Sprint(dashboard.ThisMonth(stats))),
	)

	counts := dashboard.SeverityCounts(c.shell.Vulnerabilities)
	breakdown := make([]string, 0, len(models.Severities))
	for _, severity := range models.Severities {
		breakdown = append(breakdown, severityStyle(severity).Render(fmt.Sprintf("%s %v", strings.ToUpper(string(severity)), counts[severity])))
	}

	recent := []string{c.theme.labelStyle().Render("Recent findings")}
	for i, vuln := range c.shell.Vulnerabilities {
		if i == recentLimit {
			break
		}
		recent = append(recent, fmt.Sprintf(
			"%s  %s  %s",
			severityStyle(vuln.Severity).Render(fmt.Sprintf("%-8s", strings.ToUpper(string(vuln.Severity)))),
			vuln.Title,
			c.theme.labelStyle().Render(dashboard.TargetDomain(c.shell.Targets, vuln.TargetID)),
		))
	}
	if len(c.shell.Vulnerabilities) == 0 {
		recent = append(recent, c.theme.labelStyle().Render("No vulnerabilities yet"))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		totals,
		quick,
		"",
		strings.Join(breakdown, "   "),
		"",
		strings.Join(recent, "\n"),
	)
}

func (c *CLI) filterView() string {
	if c.searching {
		return c.search.View()
	}

	var parts []string
	switch c.shell.Tab {
	case dashboard.ProgramsTab:
		if c.shell.ProgramQuery != "" {
			parts = append(parts, fmt.Sprintf("search: %s", c.shell.ProgramQuery))
		}
	case dashboard.VulnerabilitiesTab:
		if c.shell.VulnQuery != "" {
			parts = append(parts, fmt.Sprintf("search: %s", c.shell.VulnQuery))
		}
		parts = append(parts, fmt.Sprintf("severity: %s", c.shell.SeverityFilter))
	}

	return c.theme.labelStyle().Render(strings.Join(parts, "  "))
}

func (c *CLI) statusView() string {
	if c.status == "" {
		return ""
	}
	if c.statusErr {
		return c.theme.errorStyle().Render(c.status)
	}
	return c.theme.statusStyle().Render(c.status)
}
