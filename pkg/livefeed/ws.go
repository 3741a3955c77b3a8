package livefeed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// sendBuffer is how many events a slow subscriber may fall behind
// before it is dropped.
const sendBuffer = 16

// Event is the payload pushed to campaign feed subscribers when a
// donation settles.
type Event struct {
	Type       string    `json:"type"` // donation.completed | donation.matched
	CampaignID string    `json:"campaign_id"`
	DonationID string    `json:"donation_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	DonorName  string    `json:"donor_name,omitempty"` // empty for anonymous donations
	Message    string    `json:"message,omitempty"`
	Raised     string    `json:"raised_amount"`
	Progress   string    `json:"progress_percentage"`
	At         time.Time `json:"at"`
}

// Connection wraps websocket.Conn with subscription metadata. All data
// frames go through the send channel so a single goroutine owns the
// write side of the socket.
type Connection struct {
	Conn       *websocket.Conn
	CampaignID string

	send chan Event
	done chan struct{}
	once sync.Once

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch records client liveness. Called from the read loop and the
// pong handler.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Connection) idle(maxAge time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastSeen) > maxAge
}

func (c *Connection) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// Manager fans settlement events out to websocket subscribers per campaign.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // campaignID -> set of connections
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Add registers a connection for a campaign feed and starts its writer.
func (m *Manager) Add(campaignID string, conn *websocket.Conn) *Connection {
	c := &Connection{
		Conn:       conn,
		CampaignID: campaignID,
		send:       make(chan Event, sendBuffer),
		done:       make(chan struct{}),
		lastSeen:   time.Now(),
	}

	m.mu.Lock()
	if _, ok := m.connections[campaignID]; !ok {
		m.connections[campaignID] = make(map[*Connection]struct{})
	}
	m.connections[campaignID][c] = struct{}{}
	total := len(m.connections[campaignID])
	m.mu.Unlock()

	go m.writeLoop(c)

	m.logger.Debug("feed connected",
		zap.String("campaign_id", campaignID),
		zap.Int("subscribers", total),
	)
	return c
}

// writeLoop is the only goroutine that writes data frames to the
// connection. Control frames (ping, close) may still be sent from
// elsewhere; gorilla permits that concurrently.
func (m *Manager) writeLoop(c *Connection) {
	for {
		select {
		case <-c.done:
			return
		case event := <-c.send:
			if err := c.Conn.WriteJSON(event); err != nil {
				m.logger.Warn("feed send failed",
					zap.String("campaign_id", c.CampaignID),
					zap.Error(err),
				)
				m.Remove(c)
				return
			}
		}
	}
}

// Remove disconnects and removes a connection. Safe to call more than once.
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	if conns, ok := m.connections[c.CampaignID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.CampaignID)
		}
	}
	m.mu.Unlock()

	c.close()
	m.logger.Debug("feed disconnected", zap.String("campaign_id", c.CampaignID))
}

// Publish queues an event for every subscriber of the campaign. A
// subscriber whose buffer is full is dropped rather than blocking the
// settlement path.
func (m *Manager) Publish(event Event) {
	m.mu.RLock()
	conns, ok := m.connections[event.CampaignID]
	if !ok {
		m.mu.RUnlock()
		return
	}
	targets := make([]*Connection, 0, len(conns))
	for c := range conns {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- event:
		case <-c.done:
		default:
			m.logger.Warn("feed subscriber too slow, dropping",
				zap.String("campaign_id", event.CampaignID),
			)
			go m.Remove(c)
		}
	}
}

// Subscribers reports how many connections a campaign feed has.
func (m *Manager) Subscribers(campaignID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections[campaignID])
}

// Heartbeat pings all connections periodically and drops stale ones.
func (m *Manager) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		m.mu.RLock()
		stale := make([]*Connection, 0)
		live := make([]*Connection, 0)
		for _, conns := range m.connections {
			for c := range conns {
				if c.idle(2 * interval) {
					stale = append(stale, c)
				} else {
					live = append(live, c)
				}
			}
		}
		m.mu.RUnlock()

		for _, c := range stale {
			m.Remove(c)
		}
		for _, c := range live {
			_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
		}
	}
}
