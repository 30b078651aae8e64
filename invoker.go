package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	// invokeTimeout bounds every invocation. It is fixed.
	invokeTimeout = 10 * time.Second
	scanChunkSize = 32 << 10
)

var nullMarker = []byte("null")

// invoker executes actions against their endpoints and records the result
// in the status store.
type invoker struct {
	reg      *registry
	store    *statusStore
	notify   notifier
	client   *http.Client
	timeout  time.Duration
	metrics  *panelMetrics
	logger   *slog.Logger
	inflight sync.WaitGroup
}

type invokerOption func(*invoker)

func withMetrics(m *panelMetrics) invokerOption {
	return func(inv *invoker) { inv.metrics = m }
}

func withLogger(l *slog.Logger) invokerOption {
	return func(inv *invoker) { inv.logger = l }
}

// withTimeout is only used by tests; production always runs with invokeTimeout.
func withTimeout(d time.Duration) invokerOption {
	return func(inv *invoker) { inv.timeout = d }
}

func newInvoker(reg *registry, store *statusStore, n notifier, opts ...invokerOption) *invoker {
	inv := &invoker{
		reg:     reg,
		store:   store,
		notify:  n,
		client:  http.DefaultClient,
		timeout: invokeTimeout,
		logger:  newNopLogger(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// attempt is one in-flight invocation. Its run method must be called
// exactly once.
type attempt struct {
	inv     *invoker
	action  action
	started time.Time
}

// begin resolves label and marks it pending. No request is issued yet.
func (inv *invoker) begin(label string) (*attempt, error) {
	a, err := inv.reg.lookup(label)
	if err != nil {
		return nil, err
	}
	if err := inv.store.beginPending(a.label); err != nil {
		return nil, err
	}
	inv.inflight.Add(1)
	inv.metrics.begin()
	inv.logger.Info("invoking action", "action", a.label, "url", a.url)
	return &attempt{inv: inv, action: a, started: time.Now()}, nil
}

// invoke runs a complete invocation of label and blocks until it resolves.
// When err is non-nil no attempt was made and the outcome is outcomeNone.
func (inv *invoker) invoke(ctx context.Context, label string) (outcome, error) {
	at, err := inv.begin(label)
	if err != nil {
		return outcomeNone, err
	}
	return at.run(ctx), nil
}

// wait blocks until every begun attempt has resolved.
func (inv *invoker) wait() {
	inv.inflight.Wait()
}

func (at *attempt) run(ctx context.Context) outcome {
	inv := at.inv
	defer inv.inflight.Done()

	res := inv.race(ctx, at.action)
	elapsed := time.Since(at.started)

	st, err := inv.store.resolve(at.action.label, res.outcome)
	if err != nil {
		// Labels come from the registry, so this only fires on a broken store.
		inv.logger.Error("resolving status", "action", at.action.label, "err", err)
	}
	inv.metrics.observe(at.action.label, res.outcome, elapsed)

	attrs := []any{"action", at.action.label, "outcome", res.outcome.String(), "status", st.String(), "elapsed", elapsed}
	if res.err != nil {
		attrs = append(attrs, "err", res.err)
	}
	if res.outcome == outcomeSuccess {
		inv.logger.Info("action resolved", attrs...)
	} else {
		inv.logger.Warn("action resolved", attrs...)
	}

	kind, msg := describeOutcome(at.action, res, inv.timeout)
	safeNotify(inv.notify, inv.logger, kind, msg)
	return res.outcome
}

type fetchResult struct {
	outcome outcome
	err     error
}

// race runs the request against the timeout. The first to finish decides the
// outcome; a late response lands in the buffered channel and is dropped.
func (inv *invoker) race(ctx context.Context, a action) fetchResult {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan fetchResult, 1)
	go func() {
		results <- inv.fetch(reqCtx, a.url)
	}()

	timer := time.NewTimer(inv.timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res
	case <-timer.C:
		return fetchResult{outcome: outcomeTimeout}
	}
}

func (inv *invoker) fetch(ctx context.Context, url string) fetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchResult{outcome: outcomeTransportFailure, err: err}
	}
	resp, err := inv.client.Do(req)
	if err != nil {
		return fetchResult{outcome: outcomeTransportFailure, err: err}
	}
	defer resp.Body.Close()

	o, err := classifyStream(resp.Body)
	if err != nil {
		return fetchResult{outcome: outcomeTransportFailure, err: fmt.Errorf("reading body: %w", err)}
	}
	return fetchResult{outcome: o}
}

// classifyStream treats any body mentioning "null", in any case, as the
// endpoint reporting no result. A genuine payload containing that word is
// misread as a failure; the endpoints rely on this behavior so it is kept as
// is. The whole body is scanned in chunks, carrying the last three bytes
// over so a marker split across reads is still found.
func classifyStream(r io.Reader) (outcome, error) {
	carry := len(nullMarker) - 1
	buf := make([]byte, carry+scanChunkSize)
	kept := 0
	for {
		n, err := r.Read(buf[kept:])
		if n > 0 {
			window := buf[:kept+n]
			asciiLower(window[kept:])
			if bytes.Contains(window, nullMarker) {
				return outcomeRemoteFailure, nil
			}
			kept = min(carry, len(window))
			copy(buf, window[len(window)-kept:])
		}
		if errors.Is(err, io.EOF) {
			return outcomeSuccess, nil
		}
		if err != nil {
			return outcomeNone, err
		}
	}
}

func classifyBody(body []byte) outcome {
	o, _ := classifyStream(bytes.NewReader(body))
	return o
}

func asciiLower(b []byte) {
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
}

func describeOutcome(a action, res fetchResult, timeout time.Duration) (notifyKind, string) {
	switch res.outcome {
	case outcomeSuccess:
		return notifySuccess, fmt.Sprintf("%s succeeded", a.label)
	case outcomeRemoteFailure:
		return notifyFailure, fmt.Sprintf("%s failed: endpoint returned no result", a.label)
	case outcomeTimeout:
		return notifyFailure, fmt.Sprintf("%s failed: no response within %s", a.label, timeout)
	default:
		if res.err != nil {
			return notifyFailure, fmt.Sprintf("%s failed: %v", a.label, res.err)
		}
		return notifyFailure, fmt.Sprintf("%s failed", a.label)
	}
}
