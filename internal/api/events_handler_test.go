package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/ffgraph/internal/events"
)

func newEventServer(t *testing.T, cfg Config) (*Server, http.Handler) {
	t.Helper()
	s := New(cfg, OperatorCompiler{}, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return s, s.Handler()
}

// streamFor serves GET /events until d elapses and returns the body.
func streamFor(t *testing.T, h http.Handler, d time.Duration, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEventsReplayCompileActivity(t *testing.T) {
	_, h := newEventServer(t, Config{})

	rec := doRequest(t, h, http.MethodPost, "/compile", "application/yaml", flipYAML)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doRequest(t, h, http.MethodPost, "/compile", "application/yaml", "pipelines:\n  - name: bad\n    nodes: [{id: x, op: explode}]\n")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	stream := streamFor(t, h, 50*time.Millisecond)
	require.Equal(t, http.StatusOK, stream.Code)
	assert.Equal(t, "text/event-stream", stream.Header().Get("Content-Type"))

	body := stream.Body.String()
	assert.Contains(t, body, "id: 1\nevent: compile.succeeded\n")
	assert.Contains(t, body, `"pipeline":"flip"`)
	assert.Contains(t, body, "id: 2\nevent: compile.failed\n")
	assert.Contains(t, body, "explode")
}

func TestEventsHonorLastEventID(t *testing.T) {
	s, h := newEventServer(t, Config{})
	s.Events().Publish(events.CompileSucceeded, events.Compiled{Pipeline: "first"})
	s.Events().Publish(events.CompileSucceeded, events.Compiled{Pipeline: "second"})

	body := streamFor(t, h, 50*time.Millisecond, "Last-Event-ID", "1").Body.String()
	assert.NotContains(t, body, "first")
	assert.Contains(t, body, "second")
}

func TestEventsDeliverLiveEvents(t *testing.T) {
	s, h := newEventServer(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Events().Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	s.Events().Publish(events.CacheHit, events.Compiled{Pipeline: "flip", Hits: 3})
	// Give the handler a moment to write before the stream closes.
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "event: cache.hit\n"), body)
	assert.Contains(t, body, `"hits":3`)
	assert.Equal(t, 0, s.Events().Subscribers())
}

func TestEventsRequireAPIKey(t *testing.T) {
	_, h := newEventServer(t, Config{APIKey: "secret"})

	rec := doRequest(t, h, http.MethodGet, "/events", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stream := streamFor(t, h, 20*time.Millisecond, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, stream.Code)
}

func TestParseLastEventID(t *testing.T) {
	assert.Equal(t, int64(0), parseLastEventID(""))
	assert.Equal(t, int64(0), parseLastEventID("abc"))
	assert.Equal(t, int64(0), parseLastEventID("-4"))
	assert.Equal(t, int64(12), parseLastEventID("12"))
}
