package main

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// notifyKind is the flavor of a transient operator message.
type notifyKind int

const (
	notifySuccess notifyKind = iota
	notifyFailure
)

func (k notifyKind) String() string {
	if k == notifySuccess {
		return "success"
	}
	return "failure"
}

// notifier surfaces transient feedback. Implementations must not block.
type notifier interface {
	Notify(kind notifyKind, message string)
}

// toast is one notification shown by the TUI.
type toast struct {
	id      int
	kind    notifyKind
	message string
	at      time.Time
}

const (
	toastBufferSize = 16
	toastLifetime   = 3 * time.Second
)

// toastNotifier queues toasts for the TUI. When the queue is full the oldest
// queued toast makes room for the new one.
type toastNotifier struct {
	mu     sync.Mutex
	nextID int
	ch     chan toast
	logger *slog.Logger
}

func newToastNotifier(logger *slog.Logger) *toastNotifier {
	return &toastNotifier{ch: make(chan toast, toastBufferSize), logger: logger}
}

func (n *toastNotifier) Notify(kind notifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	t := toast{id: n.nextID, kind: kind, message: message, at: time.Now()}

	for {
		select {
		case n.ch <- t:
			return
		default:
		}
		select {
		case old := <-n.ch:
			n.logger.Warn("toast queue full, replacing oldest notification", "dropped", old.message)
		default:
		}
	}
}

// toasts is the channel the TUI listens on.
func (n *toastNotifier) toasts() <-chan toast {
	return n.ch
}

// consoleNotifier prints one styled line per notification.
type consoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func (n *consoleNotifier) Notify(kind notifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if kind == notifySuccess {
		fmt.Fprintln(n.out, successStyle.Render("✔ "+message))
		return
	}
	fmt.Fprintln(n.out, errorStyle.Render("✘ "+message))
}

// safeNotify shields the caller from a misbehaving notifier.
func safeNotify(n notifier, logger *slog.Logger, kind notifyKind, message string) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notifier panicked", "panic", r)
		}
	}()
	n.Notify(kind, message)
}
