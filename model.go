package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- BUBBLE TEA MODEL & ITEMS ---

// item represents a single action in our list.
type item struct {
	action action
	status status
}

// Implement list.Item interface for item.
func (i item) Title() string {
	icon := i.action.icon
	if icon == "" {
		icon = "❓"
	}
	return fmt.Sprintf("%s %s", icon, i.action.label)
}

func (i item) Description() string { return renderStatus(i.status) }
func (i item) FilterValue() string { return i.action.label }

// --- MAIN MODEL ---
type model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	list       list.Model
	spinner    spinner.Model
	inv        *invoker
	store      *statusStore
	toasts     *toastNotifier
	toast      *toast
	showCopied bool
	quitting   bool
}

func initialModel(ctx context.Context, cancel context.CancelFunc, inv *invoker, store *statusStore, toasts *toastNotifier) model {
	snapshot := store.getAll()
	actions := inv.reg.all()
	items := make([]list.Item, len(actions))
	for i, a := range actions {
		items[i] = item{action: a, status: snapshot[a.label]}
	}

	delegate := list.NewDefaultDelegate()
	selectedStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(panelPurple).
		Foreground(panelPurple).
		Padding(0, 0, 0, 1)

	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = selectedStyle.Foreground(lipgloss.Color("250")).Faint(true)

	l := list.New(items, delegate, 0, 0)
	l.Title = "☁️ Cloud Control Panel"
	l.Styles.Title = titleStyle
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))))

	return model{
		ctx:     ctx,
		cancel:  cancel,
		list:    l,
		spinner: s,
		inv:     inv,
		store:   store,
		toasts:  toasts,
	}
}

// --- BUBBLE TEA LOGIC ---
func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForToastCmd(m.toasts.toasts()))
}

//nolint:cyclop
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		if _, ok := msg.(cleanupCompleteMsg); ok {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		listWidth := int(float32(msg.Width-h) * 0.4)
		m.list.SetSize(listWidth, msg.Height-v-4)

	case invocationDoneMsg:
		return m, m.refreshItems()

	case toastMsg:
		t := msg.toast
		m.toast = &t
		return m, tea.Batch(waitForToastCmd(m.toasts.toasts()), expireToastCmd(t.id))

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case copiedToClipboardMsg:
		if msg.err != nil {
			m.toasts.Notify(notifyFailure, fmt.Sprintf("Copy failed: %v", msg.err))
			return m, nil
		}
		m.showCopied = true
		return m, copyFlashCmd()

	case copyFlashExpiredMsg:
		m.showCopied = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Batch(m.spinner.Tick, waitForInflightCmd(m.inv))
		case "enter":
			selectedItem, ok := m.list.SelectedItem().(item)
			if !ok {
				return m, nil
			}
			return m.invokeSelected(selectedItem)
		case "c":
			selectedItem, ok := m.list.SelectedItem().(item)
			if ok {
				return m, copyToClipboardCmd(selectedItem.action.url)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	var cmds []tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// invokeSelected marks the action pending before returning, then hands the
// request off to a command.
func (m model) invokeSelected(selected item) (tea.Model, tea.Cmd) {
	at, err := m.inv.begin(selected.action.label)
	if err != nil {
		if errors.Is(err, ErrActionInFlight) {
			m.toasts.Notify(notifyFailure, fmt.Sprintf("%s is already in progress", selected.action.label))
		} else {
			m.toasts.Notify(notifyFailure, err.Error())
		}
		return m, nil
	}
	refresh := m.refreshItems()
	return m, tea.Batch(refresh, runAttemptCmd(m.ctx, at))
}

// refreshItems copies the current store snapshot into the list.
func (m *model) refreshItems() tea.Cmd {
	snapshot := m.store.getAll()
	var cmds []tea.Cmd
	for i, itm := range m.list.Items() {
		it := itm.(item)
		if st := snapshot[it.action.label]; st != it.status {
			it.status = st
			cmds = append(cmds, m.list.SetItem(i, it))
		}
	}
	return tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting {
		return docStyle.Render(fmt.Sprintf("\n%s Waiting for in-flight requests... Please wait.\n", m.spinner.View()))
	}

	detailView := m.renderDetailView()
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), detailPaneStyle.Render(detailView))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, mainView, m.renderToastView(), m.renderHelpView()))
}

func (m model) renderDetailView() string {
	var b strings.Builder

	selectedItem, ok := m.list.SelectedItem().(item)
	if ok {
		a := selectedItem.action
		b.WriteString(detailTitleStyle.Render(selectedItem.Title()))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s: %s\n", detailAttrStyle.Render("Resource"), detailValStyle.Render(string(a.resource))))
		b.WriteString(fmt.Sprintf("%s: %s\n", detailAttrStyle.Render("Direction"), detailValStyle.Render(string(a.direction))))
		b.WriteString(fmt.Sprintf("%s: %s\n", detailAttrStyle.Render("Status"), renderStatus(selectedItem.status)))

		copyStatus := ""
		if m.showCopied {
			copyStatus = " " + copySuccessStyle.Render("Copied!")
		}
		b.WriteString(fmt.Sprintf("%s:%s\n%s\n", detailAttrStyle.Render("Target"), copyStatus, detailValStyle.Render(a.url)))
	} else {
		b.WriteString("Select an action to see details.\n")
	}

	b.WriteString("\n")
	b.WriteString(detailAttrStyle.Render("Actions"))
	b.WriteString("\n")
	snapshot := m.store.getAll()
	for _, a := range m.inv.reg.all() {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", a.label, renderStatus(snapshot[a.label])))
	}

	b.WriteString("\n")
	b.WriteString(detailAttrStyle.Render("Resources"))
	b.WriteString("\n")
	for _, r := range []resource{resourceDatabase, resourceCompute} {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", r, renderStatus(m.store.resourceStatus(r))))
	}

	return b.String()
}

func (m model) renderToastView() string {
	if m.toast == nil {
		return ""
	}
	if m.toast.kind == notifySuccess {
		return "\n" + toastSuccessStyle.Render("✔ "+m.toast.message)
	}
	return "\n" + toastFailureStyle.Render("✘ "+m.toast.message)
}

func (m model) renderHelpView() string {
	helpText := "↑/↓: navigate • enter: invoke • c: copy url • q: quit"
	for _, st := range m.store.getAll() {
		if st == statusPending {
			return helpStyle.Render(fmt.Sprintf("\n%s Processing... • %s", m.spinner.View(), helpText))
		}
	}
	return helpStyle.Render("\n" + helpText)
}
