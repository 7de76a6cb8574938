package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ConfigFunc is called each time a notification is attempted to get the
// latest webhook settings.
type ConfigFunc func() (enabled bool, timeout, throttle time.Duration)

// Notifier delivers post lifecycle events to user-configured webhook URLs.
type Notifier struct {
	configFn   ConfigFunc
	httpClient *http.Client

	mu         sync.Mutex
	lastSentAt map[string]time.Time
}

// New creates a Notifier. configFn is consulted on every delivery so runtime
// config changes take effect without a restart.
func New(configFn ConfigFunc) *Notifier {
	return &Notifier{
		configFn:   configFn,
		httpClient: &http.Client{},
		lastSentAt: make(map[string]time.Time),
	}
}

// Event is the payload delivered to the webhook URL.
type Event struct {
	Event     string      `json:"event"` // post.saved | post.published
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Notify posts the event to url. Delivery failures are returned, not retried.
func (n *Notifier) Notify(ctx context.Context, url, event string, data interface{}) error {
	enabled, timeout, _ := n.configFn()
	if !enabled {
		return nil
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	b, err := json.Marshal(Event{Event: event, Timestamp: time.Now(), Data: data})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SeoForge-Event", event)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s returned status %d", url, resp.StatusCode)
	}
	return nil
}

// NotifyThrottled delivers the event at most once per throttle window for the
// same url and event pair. Used for chatty events like autosave failures.
func (n *Notifier) NotifyThrottled(ctx context.Context, url, event string, data interface{}) {
	enabled, _, throttle := n.configFn()
	if !enabled || strings.TrimSpace(url) == "" {
		return
	}
	if throttle <= 0 {
		throttle = 30 * time.Second
	}

	throttleKey := url + "|" + event

	n.mu.Lock()
	last, ok := n.lastSentAt[throttleKey]
	if ok && time.Since(last) < throttle {
		n.mu.Unlock()
		return
	}
	n.lastSentAt[throttleKey] = time.Now()
	n.mu.Unlock()

	_ = n.Notify(ctx, url, event, data)
}
