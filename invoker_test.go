package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invokerFixture struct {
	reg     *registry
	store   *statusStore
	notes   *recordingNotifier
	metrics *panelMetrics
	inv     *invoker
}

func newInvokerFixture(t *testing.T, baseURL string, opts ...invokerOption) *invokerFixture {
	t.Helper()
	reg := newTestRegistry(t, baseURL)
	f := &invokerFixture{
		reg:     reg,
		store:   newStatusStore(reg),
		notes:   &recordingNotifier{},
		metrics: newPanelMetrics(),
	}
	opts = append([]invokerOption{withMetrics(f.metrics)}, opts...)
	f.inv = newInvoker(reg, f.store, f.notes, opts...)
	return f
}

func (f *invokerFixture) status(label string) status {
	st, _ := f.store.get(label)
	return st
}

func TestInvoke_SuccessOnStart(t *testing.T) {
	srv := newBodyServer(t, "OK")
	f := newInvokerFixture(t, srv.URL)

	o, err := f.inv.invoke(context.Background(), "Start RDS")
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, o)
	assert.Equal(t, statusRunning, f.status("Start RDS"))

	notes := f.notes.all()
	require.Len(t, notes, 1)
	assert.Equal(t, notifySuccess, notes[0].kind)
	assert.Contains(t, notes[0].message, "Start RDS")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.invocations.WithLabelValues("Start RDS", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.inFlight))
}

func TestInvoke_SuccessOnStop(t *testing.T) {
	srv := newBodyServer(t, `{"StoppingInstances":[{"InstanceId":"i-0abc"}]}`)
	f := newInvokerFixture(t, srv.URL)

	o, err := f.inv.invoke(context.Background(), "Stop EC2")
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, o)
	assert.Equal(t, statusStopped, f.status("Stop EC2"))
}

func TestInvoke_NullBodyIsRemoteFailure(t *testing.T) {
	for _, body := range []string{"null", "NULL", `{"result": Null}`} {
		t.Run(body, func(t *testing.T) {
			srv := newBodyServer(t, body)
			f := newInvokerFixture(t, srv.URL)

			o, err := f.inv.invoke(context.Background(), "Start EC2")
			require.NoError(t, err)
			assert.Equal(t, outcomeRemoteFailure, o)
			assert.Equal(t, statusStopped, f.status("Start EC2"))

			notes := f.notes.all()
			require.Len(t, notes, 1)
			assert.Equal(t, notifyFailure, notes[0].kind)
		})
	}
}

func TestInvoke_NonOKStatusStillReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()
	f := newInvokerFixture(t, srv.URL)

	o, err := f.inv.invoke(context.Background(), "Start RDS")
	require.NoError(t, err)
	assert.Equal(t, outcomeRemoteFailure, o)
}

func TestInvoke_Timeout(t *testing.T) {
	release := make(chan struct{})
	handled := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(handled)
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()
	f := newInvokerFixture(t, srv.URL, withTimeout(50*time.Millisecond))

	o, err := f.inv.invoke(context.Background(), "Start RDS")
	require.NoError(t, err)
	assert.Equal(t, outcomeTimeout, o)
	assert.Equal(t, statusUnknown, f.status("Start RDS"))

	close(release)
	<-handled
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, statusUnknown, f.status("Start RDS"), "late response must not change the status")
	notes := f.notes.all()
	require.Len(t, notes, 1)
	assert.Equal(t, notifyFailure, notes[0].kind)
	assert.Contains(t, notes[0].message, "no response within")
}

func TestInvoke_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	f := newInvokerFixture(t, url)

	o, err := f.inv.invoke(context.Background(), "Stop RDS")
	require.NoError(t, err)
	assert.Equal(t, outcomeTransportFailure, o)
	assert.Equal(t, statusUnknown, f.status("Stop RDS"))

	notes := f.notes.all()
	require.Len(t, notes, 1)
	assert.Equal(t, notifyFailure, notes[0].kind)
}

func TestInvoke_UnknownActionMakesNoCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	f := newInvokerFixture(t, srv.URL)
	before := f.store.getAll()

	o, err := f.inv.invoke(context.Background(), "Reboot RDS")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, outcomeNone, o)
	assert.Zero(t, hits.Load())
	assert.Equal(t, before, f.store.getAll())
	assert.Empty(t, f.notes.all())
}

func TestInvoke_PendingBeforeOutcome(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()
	f := newInvokerFixture(t, srv.URL)

	at, err := f.inv.begin("Start EC2")
	require.NoError(t, err)
	assert.Equal(t, statusPending, f.status("Start EC2"))
	assert.Equal(t, statusPending, f.store.resourceStatus(resourceCompute))

	// a second invocation of the same label is rejected while pending
	_, err = f.inv.begin("Start EC2")
	assert.ErrorIs(t, err, ErrActionInFlight)

	done := make(chan outcome, 1)
	go func() { done <- at.run(context.Background()) }()
	close(release)

	assert.Equal(t, outcomeSuccess, <-done)
	assert.Equal(t, statusRunning, f.status("Start EC2"))
	require.Len(t, f.notes.all(), 1)
}

func TestInvoke_StartThenStop(t *testing.T) {
	srv := newBodyServer(t, "OK")
	f := newInvokerFixture(t, srv.URL)

	_, err := f.inv.invoke(context.Background(), "Start RDS")
	require.NoError(t, err)
	assert.Equal(t, statusRunning, f.store.resourceStatus(resourceDatabase))

	_, err = f.inv.invoke(context.Background(), "Stop RDS")
	require.NoError(t, err)
	assert.Equal(t, statusStopped, f.status("Stop RDS"))
	assert.Equal(t, statusStopped, f.store.resourceStatus(resourceDatabase))
	assert.Len(t, f.notes.all(), 2)
}

func TestInvoke_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	f := newInvokerFixture(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	at, err := f.inv.begin("Stop EC2")
	require.NoError(t, err)
	cancel()

	assert.Equal(t, outcomeTransportFailure, at.run(ctx))
	assert.Equal(t, statusUnknown, f.status("Stop EC2"))
	f.inv.wait()
}

type panickingNotifier struct{}

func (panickingNotifier) Notify(notifyKind, string) { panic("boom") }

func TestInvoke_NotifierPanicDoesNotAbort(t *testing.T) {
	srv := newBodyServer(t, "OK")
	reg := newTestRegistry(t, srv.URL)
	store := newStatusStore(reg)
	inv := newInvoker(reg, store, panickingNotifier{})

	o, err := inv.invoke(context.Background(), "Start RDS")
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, o)
	st, _ := store.get("Start RDS")
	assert.Equal(t, statusRunning, st)
}

func TestInvoke_NullAfterLargeBody(t *testing.T) {
	srv := newBodyServer(t, strings.Repeat("a", 1<<20)+"null")
	f := newInvokerFixture(t, srv.URL)

	o, err := f.inv.invoke(context.Background(), "Start RDS")
	require.NoError(t, err)
	assert.Equal(t, outcomeRemoteFailure, o)
	assert.Equal(t, statusStopped, f.status("Start RDS"))
}

// chunkedReader returns one chunk per Read call.
type chunkedReader struct {
	chunks []string
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestClassifyStream(t *testing.T) {
	testCases := []struct {
		name   string
		chunks []string
		want   outcome
	}{
		{name: "empty", chunks: nil, want: outcomeSuccess},
		{name: "plain", chunks: []string{"OK"}, want: outcomeSuccess},
		{name: "split marker", chunks: []string{"xxnu", "LL"}, want: outcomeRemoteFailure},
		{name: "split one byte at a time", chunks: []string{"n", "U", "l", "L"}, want: outcomeRemoteFailure},
		{name: "near miss across chunks", chunks: []string{"nul", "x", "l"}, want: outcomeSuccess},
		{name: "marker after full chunk", chunks: []string{strings.Repeat("b", scanChunkSize) + "nu", "ll"}, want: outcomeRemoteFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classifyStream(&chunkedReader{chunks: tc.chunks})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestClassifyStream_ReadError(t *testing.T) {
	_, err := classifyStream(failingReader{})
	assert.Error(t, err)
}

func TestClassifyBody(t *testing.T) {
	assert.Equal(t, outcomeSuccess, classifyBody([]byte("OK")))
	assert.Equal(t, outcomeSuccess, classifyBody(nil))
	assert.Equal(t, outcomeRemoteFailure, classifyBody([]byte("nullable field")))
}

func TestInvokeTimeoutIsFixed(t *testing.T) {
	reg := newTestRegistry(t, "http://127.0.0.1:1")
	inv := newInvoker(reg, newStatusStore(reg), nil)
	assert.Equal(t, 10*time.Second, inv.timeout)
}
