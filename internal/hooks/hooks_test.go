package hooks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fusegrid/internal/ctxlog"
)

// recorder captures every call as a short string.
type recorder struct {
	Base
	name  string
	calls *[]string
}

func (r recorder) BeforeRun(_ context.Context, run RunInfo) {
	*r.calls = append(*r.calls, r.name+":before_run:"+run.RunID)
}

func (r recorder) OnNodeError(_ context.Context, _ RunInfo, node string, err error) {
	*r.calls = append(*r.calls, r.name+":node_error:"+node+":"+err.Error())
}

func TestManager_DispatchesInRegistrationOrder(t *testing.T) {
	var calls []string
	m := NewManager(recorder{name: "a", calls: &calls}, nil, recorder{name: "b", calls: &calls})
	assert.Equal(t, 2, m.Len())

	run := RunInfo{RunID: "r1", Pipeline: "__default__"}
	m.BeforeRun(context.Background(), run)
	m.AfterRun(context.Background(), run)
	m.OnNodeError(context.Background(), run, "train", errors.New("boom"))

	assert.Equal(t, []string{
		"a:before_run:r1",
		"b:before_run:r1",
		"a:node_error:train:boom",
		"b:node_error:train:boom",
	}, calls)
}

func TestLogHook(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	run := RunInfo{RunID: "r1", Pipeline: "p"}

	var h LogHook
	h.BeforeNode(ctx, run, "train")
	h.OnNodeError(ctx, run, "train", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `msg="Node starting."`)
	assert.Contains(t, out, "node=train")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []string
	last   map[string]any
	closed bool
}

func (f *fakeEmitter) Emit(event string, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.last = payload
}

func (f *fakeEmitter) Close() { f.closed = true }

func TestSocketIOHook_Publishes(t *testing.T) {
	fake := &fakeEmitter{}
	h := NewSocketIOHook(fake)
	ctx := context.Background()
	run := RunInfo{RunID: "r1", Pipeline: "p"}

	h.BeforeRun(ctx, run)
	h.BeforeNode(ctx, run, "train")
	h.OnNodeError(ctx, run, "train", errors.New("boom"))
	h.OnRunError(ctx, run, errors.New("boom"))
	h.Close()

	assert.Equal(t, []string{EventRunStarted, EventNodeStarted, EventNodeFailed, EventRunFailed}, fake.events)
	assert.Equal(t, "r1", fake.last["run_id"])
	assert.Equal(t, "boom", fake.last["error"])
	assert.True(t, fake.closed)
}

func TestDialSocketIO_RejectsBadURL(t *testing.T) {
	_, err := DialSocketIO(context.Background(), SocketIOConfig{URL: "not a url"})
	require.Error(t, err)
}

func TestDialSocketIO_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DialSocketIO(ctx, SocketIOConfig{URL: "http://127.0.0.1:1/socket.io/", MaxRetries: 5})
	require.Error(t, err)
}
