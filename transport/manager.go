package transport

import (
	"log"
	"sync"
	"time"

	"cryptoengine/engine"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	staleAfter     = 5 * time.Minute
	healthInterval = 60 * time.Second
)

// Manager handles connection lifecycle, health monitoring, and
// reconnection for the exchange feed: it redials with exponential
// backoff on any connect or read failure, and forces a reconnect when
// the feed goes quiet for too long.
type Manager struct {
	wsURL   string
	symbols []string

	mu          sync.Mutex
	client      *Client
	lastMsgTime time.Time
}

// NewManager creates a Manager for the given endpoint and instrument
// list.
func NewManager(wsURL string, symbols []string) *Manager {
	return &Manager{wsURL: wsURL, symbols: symbols, lastMsgTime: time.Now()}
}

// connect dials and subscribes, replacing any existing client.
func (m *Manager) connect() error {
	client := NewClient(m.wsURL)
	if err := client.Connect(); err != nil {
		return err
	}
	if err := client.SubscribeTrades(m.symbols); err != nil {
		_ = client.Close()
		return err
	}

	m.mu.Lock()
	m.client = client
	m.lastMsgTime = time.Now()
	m.mu.Unlock()
	return nil
}

func (m *Manager) touch() {
	m.mu.Lock()
	m.lastMsgTime = time.Now()
	m.mu.Unlock()
}

func (m *Manager) idleFor() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastMsgTime)
}

// Run dials the feed and delivers every text frame to onFrame until
// shutdown is requested, reconnecting with exponential backoff on any
// read or connect error. Meant to run on its own goroutine for the
// process lifetime.
func (m *Manager) Run(shut *engine.ShutdownFlag, onFrame func(engine.RawFrame)) {
	backoff := initialBackoff

	for !shut.Requested() {
		if err := m.connect(); err != nil {
			log.Printf("⚠️  Exchange connect failed: %v, retrying in %v", err, backoff)
			if !sleepOrShutdown(backoff, shut) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}
		log.Printf("✅ Connected to exchange feed at %s", m.wsURL)
		backoff = initialBackoff

		m.readLoop(shut, onFrame)

		if shut.Requested() {
			return
		}
		log.Println("🔄 Exchange feed disconnected, reconnecting...")
	}
}

func (m *Manager) readLoop(shut *engine.ShutdownFlag, onFrame func(engine.RawFrame)) {
	for {
		if shut.Requested() {
			m.closeClient()
			return
		}
		client := m.currentClient()
		if client == nil {
			// Health monitor tore the client down between iterations.
			return
		}
		text, err := client.ReadMessage()
		if err != nil {
			log.Printf("⚠️  Exchange read error: %v", err)
			m.closeClient()
			return
		}
		m.touch()
		onFrame(engine.RawFrame{Text: text})
	}
}

func (m *Manager) currentClient() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

func (m *Manager) closeClient() {
	m.mu.Lock()
	c := m.client
	m.client = nil
	m.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
}

// RunHealthMonitor periodically checks how long it has been since the
// last frame arrived and forces a reconnect (by closing the current
// client, which unblocks readLoop's ReadMessage with an error) if the
// feed has gone stale. Meant to run alongside Run on its own goroutine.
func (m *Manager) RunHealthMonitor(shut *engine.ShutdownFlag) {
	for {
		if !sleepOrShutdown(healthInterval, shut) {
			return
		}
		idle := m.idleFor()
		if idle > staleAfter {
			log.Printf("⚠️  No exchange message received for %v, forcing reconnect", idle.Round(time.Second))
			m.closeClient()
		} else {
			log.Printf("💓 Exchange feed healthy, last message %v ago", idle.Round(time.Second))
		}
	}
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// sleepOrShutdown sleeps for d, returning early (with false) if
// shutdown is requested mid-sleep.
func sleepOrShutdown(d time.Duration, shut *engine.ShutdownFlag) bool {
	const step = 200 * time.Millisecond
	for remaining := d; remaining > 0; remaining -= step {
		if shut.Requested() {
			return false
		}
		sleep := step
		if remaining < sleep {
			sleep = remaining
		}
		time.Sleep(sleep)
	}
	return !shut.Requested()
}
