package livefeed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// dialTestFeed stands up an http server that upgrades and registers
// every request with the manager, then dials it once.
func dialTestFeed(t *testing.T, m *Manager, campaignID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		m.Add(campaignID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	waitFor(t, func() bool { return m.Subscribers(campaignID) == 1 })
	return client
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPublishConcurrentSenders(t *testing.T) {
	m := NewManager(zap.NewNop())
	client := dialTestFeed(t, m, "camp_1")

	const senders = 64

	// All events funnel through one writer goroutine per connection, so
	// concurrent Publish calls must never interleave frames.
	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func() {
			defer wg.Done()
			m.Publish(Event{
				Type:       "donation.completed",
				CampaignID: "camp_1",
				Amount:     "25.00",
				Currency:   "USD",
			})
		}()
	}

	received := 0
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for received < senders {
		var ev Event
		if err := client.ReadJSON(&ev); err != nil {
			break
		}
		require.Equal(t, "camp_1", ev.CampaignID)
		require.Equal(t, "25.00", ev.Amount)
		received++
	}
	wg.Wait()

	// A subscriber that falls behind the buffer may legitimately be
	// dropped, but every frame that did arrive must be intact.
	assert.Greater(t, received, 0)
}

func TestPublishDropsSlowSubscriber(t *testing.T) {
	m := NewManager(zap.NewNop())
	dialTestFeed(t, m, "camp_slow")

	// Never read from the client; once the send buffer overflows the
	// manager must evict the connection instead of blocking Publish.
	for i := 0; i < sendBuffer*4; i++ {
		m.Publish(Event{Type: "donation.completed", CampaignID: "camp_slow"})
	}

	waitFor(t, func() bool { return m.Subscribers("camp_slow") == 0 })
}

func TestPublishNoSubscribers(t *testing.T) {
	t.Parallel()

	m := NewManager(zap.NewNop())
	m.Publish(Event{Type: "donation.completed", CampaignID: "camp_empty"})
	assert.Equal(t, 0, m.Subscribers("camp_empty"))
}

func TestRemoveIdempotent(t *testing.T) {
	m := NewManager(zap.NewNop())
	client := dialTestFeed(t, m, "camp_2")
	_ = client

	m.mu.RLock()
	var c *Connection
	for conn := range m.connections["camp_2"] {
		c = conn
	}
	m.mu.RUnlock()
	require.NotNil(t, c)

	m.Remove(c)
	m.Remove(c) // second call must not panic or block
	assert.Equal(t, 0, m.Subscribers("camp_2"))
}

func TestConnectionLiveness(t *testing.T) {
	t.Parallel()

	c := &Connection{lastSeen: time.Now().Add(-time.Minute)}
	assert.True(t, c.idle(30*time.Second))

	// Touch is called from the pong handler concurrently with the
	// heartbeat's idle checks.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.Touch() }()
		go func() { defer wg.Done(); _ = c.idle(30 * time.Second) }()
	}
	wg.Wait()
	assert.False(t, c.idle(30*time.Second))
}
