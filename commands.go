package main

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// --- BUBBLE TEA MESSAGES ---
// These messages are the results of commands.

type invocationDoneMsg struct {
	label   string
	outcome outcome
}

type toastMsg struct {
	toast toast
}

type toastExpiredMsg struct {
	id int
}

type copiedToClipboardMsg struct {
	err error
}

type copyFlashExpiredMsg struct{}

type cleanupCompleteMsg struct{}

// --- INVOCATION, TOAST & CLIPBOARD COMMANDS ---

// For mocking in tests
var clipboardWriteAll = clipboard.WriteAll

func runAttemptCmd(ctx context.Context, at *attempt) tea.Cmd {
	return func() tea.Msg {
		o := at.run(ctx)
		return invocationDoneMsg{label: at.action.label, outcome: o}
	}
}

// waitForToastCmd blocks until the notifier queues a toast. It is re-armed
// after every toastMsg.
func waitForToastCmd(ch <-chan toast) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg{toast: t}
	}
}

func expireToastCmd(id int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedToClipboardMsg{err: clipboardWriteAll(text)}
	}
}

func copyFlashCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return copyFlashExpiredMsg{}
	})
}

func waitForInflightCmd(inv *invoker) tea.Cmd {
	return func() tea.Msg {
		inv.wait()
		return cleanupCompleteMsg{}
	}
}
