package diag

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/controller"
)

func testState() controller.Snapshot {
	return controller.Snapshot{
		Time:              time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveDeadzone: 0.12,
		Candidate:         "right",
	}
}

func TestHandleState(t *testing.T) {
	t.Parallel()

	s := New(Config{Addr: "127.0.0.1:0"}, testState, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/state", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"candidate_sector":"right"`)
	assert.Contains(t, string(body), `"effective_deadzone":0.12`)
}

func TestWSRouteRequiresUpgrade(t *testing.T) {
	t.Parallel()

	s := New(Config{Addr: "127.0.0.1:0"}, testState, zap.NewNop())

	req := httptest.NewRequest("GET", "/ws/state", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 426, resp.StatusCode)
}

func TestHubBroadcast(t *testing.T) {
	t.Parallel()

	h := newHub(zap.NewNop())
	id1, ch1 := h.subscribe()
	_, ch2 := h.subscribe()
	assert.Equal(t, 2, h.count())

	h.broadcast([]byte("frame"))
	assert.Equal(t, []byte("frame"), <-ch1)
	assert.Equal(t, []byte("frame"), <-ch2)

	h.unsubscribe(id1)
	assert.Equal(t, 1, h.count())
	_, open := <-ch1
	assert.False(t, open)

	// Double unsubscribe is safe.
	h.unsubscribe(id1)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	t.Parallel()

	h := newHub(zap.NewNop())
	_, ch := h.subscribe()

	// Fill the buffer without reading, then push one more frame.
	for i := 0; i < subscriberBuffer+1; i++ {
		h.broadcast([]byte("x"))
	}
	assert.Equal(t, 0, h.count())

	// Channel is closed after draining the buffered frames.
	drained := 0
	for range ch {
		drained++
	}
	assert.Equal(t, subscriberBuffer, drained)
}

func TestHubCloseAll(t *testing.T) {
	t.Parallel()

	h := newHub(zap.NewNop())
	_, ch := h.subscribe()
	h.closeAll()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.count())

	// New subscriptions after close get a closed channel back.
	_, late := h.subscribe()
	_, open = <-late
	assert.False(t, open)
}
