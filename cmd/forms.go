package main

import (
	"strconv"

	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField struct {
	label string
	input textinput.Model
	draft func(s *dashboard.Shell) *string
}

// formModel edits the draft of one collection through text inputs.
// Values are written back into the shell after every keystroke so drafts survive
// hiding the form.
type formModel struct {
	collection dashboard.Collection
	title      string
	fields     []formField
	focus      int
}

func newField(label string, placeholder string, draft func(s *dashboard.Shell) *string) formField {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	input.CharLimit = 256
	input.Width = formWidth - 4

	return formField{label: label, input: input, draft: draft}
}

func withSuggestions(field formField, suggestions []string) formField {
	field.input.ShowSuggestions = true
	field.input.SetSuggestions(suggestions)
	return field
}

func newForm(collection dashboard.Collection, shell *dashboard.Shell) formModel {
	var form formModel

	switch collection {
	case dashboard.ProgramsCollection:
		form = formModel{
			title: "New program",
			fields: []formField{
				newField("Name", "Acme Corp", func(s *dashboard.Shell) *string { return &s.ProgramForm.Name }),
				newField("Platform", "HackerOne", func(s *dashboard.Shell) *string { return &s.ProgramForm.Platform }),
				newField("Scope", "*.acme.com", func(s *dashboard.Shell) *string { return &s.ProgramForm.Scope }),
				newField("Max bounty", "5000", func(s *dashboard.Shell) *string { return &s.ProgramForm.MaxBounty }),
				withSuggestions(
					newField("Status", "active / paused / closed", func(s *dashboard.Shell) *string { return &s.ProgramForm.Status }),
					enumStrings(models.ProgramStatuses),
				),
			},
		}
	case dashboard.TargetsCollection:
		form = formModel{
			title: "New target",
			fields: []formField{
				withSuggestions(
					newField("Program ID", "id of the parent program", func(s *dashboard.Shell) *string { return &s.TargetForm.ProgramID }),
					programIDs(shell.Programs),
				),
				newField("Domain", "api.acme.com", func(s *dashboard.Shell) *string { return &s.TargetForm.Domain }),
				newField("IP address", "203.0.113.10", func(s *dashboard.Shell) *string { return &s.TargetForm.IPAddress }),
				newField("Tech stack", "ctrl+t to fingerprint", func(s *dashboard.Shell) *string { return &s.TargetForm.TechStack }),
				newField("Notes", "", func(s *dashboard.Shell) *string { return &s.TargetForm.Notes }),
			},
		}
	case dashboard.VulnerabilitiesCollection:
		form = formModel{
			title: "New vulnerability",
			fields: []formField{
				withSuggestions(
					newField("Target ID", "id of the affected target", func(s *dashboard.Shell) *string { return &s.VulnForm.TargetID }),
					targetIDs(shell.Targets),
				),
				newField("Title", "Stored XSS in profile", func(s *dashboard.Shell) *string { return &s.VulnForm.Title }),
				withSuggestions(
					newField("Severity", "critical / high / medium / low / info", func(s *dashboard.Shell) *string { return &s.VulnForm.Severity }),
					enumStrings(models.Severities),
				),
				newField("Type", "XSS", func(s *dashboard.Shell) *string { return &s.VulnForm.VulnerabilityType }),
				newField("Description", "", func(s *dashboard.Shell) *string { return &s.VulnForm.Description }),
				withSuggestions(
					newField("Status", "draft / reported / triaged / resolved / duplicate", func(s *dashboard.Shell) *string { return &s.VulnForm.Status }),
					enumStrings(models.VulnStatuses),
				),
				newField("Bounty", "1500", func(s *dashboard.Shell) *string { return &s.VulnForm.BountyAmount }),
				newField("Reported at", "2006-01-02", func(s *dashboard.Shell) *string { return &s.VulnForm.ReportedAt }),
			},
		}
	}

	form.collection = collection
	form.load(shell)
	form.setFocus(0)

	return form
}

// load copies the shell's draft into the inputs.
func (f *formModel) load(shell *dashboard.Shell) {
	for i := range f.fields {
		f.fields[i].input.SetValue(*f.fields[i].draft(shell))
	}
}

func (f *formModel) store(shell *dashboard.Shell) {
	for _, field := range f.fields {
		*field.draft(shell) = field.input.Value()
	}
}

func (f *formModel) setFocus(idx int) {
	if len(f.fields) == 0 {
		return
	}

	f.focus = (idx + len(f.fields)) % len(f.fields)
	for i := range f.fields {
		if i == f.focus {
			f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
}

func (f *formModel) next() {
	f.setFocus(f.focus + 1)
}

func (f *formModel) prev() {
	f.setFocus(f.focus - 1)
}

func (f *formModel) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f formModel) view(theme Theme) string {
	lines := []string{theme.statusStyle().Bold(true).Render(f.title), ""}
	for i, field := range f.fields {
		label := theme.labelStyle().Render(field.label)
		if i == f.focus {
			label = theme.statusStyle().Render("> " + field.label)
		}
		lines = append(lines, label, field.input.View())
	}
	lines = append(lines, "", theme.labelStyle().Render("enter submit • esc cancel • tab next field"))

	return theme.boxStyles().Active.Width(formWidth).Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func programIDs(programs []models.Program) []string {
	out := make([]string, 0, len(programs))
	for _, program := range programs {
		out = append(out, strconv.FormatInt(program.ID, 10))
	}
	return out
}

func targetIDs(targets []models.Target) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		out = append(out, strconv.FormatInt(target.ID, 10))
	}
	return out
}
