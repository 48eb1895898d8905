package main

import (
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/caio-ishikawa/bountyboard/dashboard"
	"github.com/caio-ishikawa/bountyboard/shared/recon"
	tea "github.com/charmbracelet/bubbletea"
)

func (c *CLI) switchTab(tab dashboard.Tab) {
	c.shell.SetTab(tab)
	c.table.SetCursor(0)
	c.syncForm()
	c.refreshTable()
}

func (c *CLI) handleKeyNumber(keyStr string) (tea.Model, tea.Cmd, bool) {
	idx, err := strconv.Atoi(keyStr)
	if err != nil || idx < 1 || idx > len(dashboard.Tabs) {
		return nil, nil, true
	}

	c.switchTab(dashboard.Tabs[idx-1])

	return c, nil, false
}

func (c *CLI) handleKeyTab() (tea.Model, tea.Cmd, bool) {
	c.shell.NextTab()
	c.switchTab(c.shell.Tab)

	return c, nil, false
}

func (c *CLI) handleKeyA() (tea.Model, tea.Cmd, bool) {
	if _, ok := c.shell.Tab.Collection(); !ok {
		return nil, nil, true
	}

	c.shell.ToggleForm()
	c.syncForm()

	return c, nil, false
}

func (c *CLI) handleKeyD() (tea.Model, tea.Cmd, bool) {
	collection, ok := c.shell.Tab.Collection()
	if !ok {
		return nil, nil, true
	}

	id, err := rowID(c.table.SelectedRow())
	if err != nil {
		c.setError(err.Error())
		return c, nil, false
	}

	return c, c.delete(collection, id), false
}

func (c *CLI) handleKeySlash() (tea.Model, tea.Cmd, bool) {
	switch c.shell.Tab {
	case dashboard.ProgramsTab:
		c.search.SetValue(c.shell.ProgramQuery)
	case dashboard.VulnerabilitiesTab:
		c.search.SetValue(c.shell.VulnQuery)
	default:
		return nil, nil, true
	}

	c.searching = true
	c.search.CursorEnd()

	return c, c.search.Focus(), false
}

func (c *CLI) handleKeyF() (tea.Model, tea.Cmd, bool) {
	if c.shell.Tab != dashboard.VulnerabilitiesTab {
		return nil, nil, true
	}

	c.shell.CycleSeverityFilter()
	c.table.SetCursor(0)
	c.refreshTable()

	return c, nil, false
}

func (c *CLI) handleKeyR() (tea.Model, tea.Cmd, bool) {
	c.setStatus("Reloading")
	return c, c.fetch(dashboard.Collections...), false
}

func (c *CLI) handleKeyY() (tea.Model, tea.Cmd, bool) {
	value, ok := copyField(c.shell.Tab, c.table.SelectedRow())
	if !ok {
		return nil, nil, true
	}

	if err := clipboard.WriteAll(value); err != nil {
		c.log.Error().Err(err).Msg("Failed to copy to clipboard")
		c.setError("Failed to copy to clipboard: " + err.Error())
		return c, nil, false
	}

	c.setStatus("Copied " + value)

	return c, nil, false
}

func (c *CLI) handleKeyO() (tea.Model, tea.Cmd, bool) {
	if c.shell.Tab != dashboard.TargetsTab {
		return nil, nil, true
	}

	row := c.table.SelectedRow()
	if len(row) < 2 {
		return nil, nil, true
	}

	if c.osErr != nil {
		c.setError(c.osErr.Error())
		return c, nil, false
	}

	url := recon.TargetURL(row[1])
	if err := openURL(c.os, url); err != nil {
		c.log.Error().Err(err).Msg("Failed to open target")
		c.setError(err.Error())
		return c, nil, false
	}

	c.setStatus("Opened " + url)

	return c, nil, false
}

func (c *CLI) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		c.form.store(c.shell)
		c.shell.ToggleForm()
		c.syncForm()
		return c, nil
	case "enter":
		c.form.store(c.shell)
		c.setStatus("Submitting")
		return c, c.create(c.form.collection)
	case "tab":
		focused := c.form.fields[c.form.focus].input
		if suggestion := focused.CurrentSuggestion(); suggestion != "" && suggestion != focused.Value() {
			break
		}
		c.form.next()
		return c, nil
	case "shift+tab", "up":
		c.form.prev()
		return c, nil
	case "down":
		c.form.next()
		return c, nil
	case "ctrl+t":
		if c.form.collection != dashboard.TargetsCollection {
			return c, nil
		}
		if c.fingerprinter == nil {
			c.setError("Fingerprinting is unavailable")
			return c, nil
		}

		c.form.store(c.shell)
		domain, err := recon.NormalizeDomain(c.shell.TargetForm.Domain)
		if err != nil {
			c.setError(err.Error())
			return c, nil
		}

		c.setStatus("Fingerprinting " + domain)
		return c, c.fingerprint(domain)
	}

	cmd := c.form.update(msg)
	c.form.store(c.shell)

	return c, cmd
}

func (c *CLI) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		c.searching = false
		c.search.Blur()
		return c, nil
	case "esc":
		c.searching = false
		c.search.Blur()
		c.search.SetValue("")
	default:
		var cmd tea.Cmd
		c.search, cmd = c.search.Update(msg)
		c.applySearch()
		return c, cmd
	}

	c.applySearch()
	return c, nil
}

func (c *CLI) applySearch() {
	switch c.shell.Tab {
	case dashboard.ProgramsTab:
		c.shell.ProgramQuery = c.search.Value()
	case dashboard.VulnerabilitiesTab:
		c.shell.VulnQuery = c.search.Value()
	}

	c.table.SetCursor(0)
	c.refreshTable()
}
