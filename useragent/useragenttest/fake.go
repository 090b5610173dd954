// Package useragenttest provides scriptable in-memory user agents for tests
// of code that drives authorization round trips.
package useragenttest

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/useragent"
)

// CustomTabs is a scriptable [useragent.CustomTabs].
type CustomTabs struct {
	mu sync.Mutex

	// AvailableErr is returned by IsAvailable; nil means available.
	AvailableErr error
	// LaunchFunc, when set, replaces CallbackURL/LaunchErr.
	LaunchFunc  func(ctx context.Context, url string) (string, error)
	CallbackURL string
	LaunchErr   error

	launched []string
	probes   int
	closes   int
}

func (c *CustomTabs) IsAvailable(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes++
	return c.AvailableErr
}

func (c *CustomTabs) Launch(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	c.launched = append(c.launched, url)
	fn := c.LaunchFunc
	callback, err := c.CallbackURL, c.LaunchErr
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx, url)
	}
	return callback, err
}

func (c *CustomTabs) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

// Launched returns every URL passed to Launch, in order.
func (c *CustomTabs) Launched() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.launched...)
}

func (c *CustomTabs) Probes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probes
}

// WebView is a scriptable [useragent.WebView]. OnOpen runs on its own
// goroutine for every opened view and plays the part of the user.
type WebView struct {
	mu      sync.Mutex
	OpenErr error
	OnOpen  func(v *View)
	views   []*View
}

func (w *WebView) Open(url, target, options string) (useragent.View, error) {
	w.mu.Lock()
	if w.OpenErr != nil {
		err := w.OpenErr
		w.mu.Unlock()
		return nil, err
	}
	v := &View{
		URL:       url,
		Target:    target,
		Options:   options,
		listeners: map[useragent.EventType]map[useragent.ListenerID]useragent.Listener{},
	}
	w.views = append(w.views, v)
	script := w.OnOpen
	w.mu.Unlock()

	if script != nil {
		go script(v)
	}
	return v, nil
}

func (w *WebView) Views() []*View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*View(nil), w.views...)
}

// View is an in-memory [useragent.View].
type View struct {
	URL     string
	Target  string
	Options string

	mu        sync.Mutex
	listeners map[useragent.EventType]map[useragent.ListenerID]useragent.Listener
	nextID    useragent.ListenerID
	closed    bool
	closes    int
	scripts   []string
}

func (v *View) AddEventListener(event useragent.EventType, fn useragent.Listener) useragent.ListenerID {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	if v.listeners[event] == nil {
		v.listeners[event] = map[useragent.ListenerID]useragent.Listener{}
	}
	v.listeners[event][v.nextID] = fn
	return v.nextID
}

func (v *View) RemoveEventListener(event useragent.EventType, id useragent.ListenerID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.listeners[event], id)
}

func (v *View) ExecuteScript(code string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scripts = append(v.scripts, code)
	return nil
}

// Close closes the view and emits exit the first time, like a real browser
// window does when closed programmatically.
func (v *View) Close() error {
	v.mu.Lock()
	v.closes++
	already := v.closed
	v.closed = true
	v.mu.Unlock()
	if !already {
		v.fire(useragent.Event{Type: useragent.EventExit})
	}
	return nil
}

// Navigate emits loadstart then loadstop for url.
func (v *View) Navigate(url string) {
	v.fire(useragent.Event{Type: useragent.EventLoadStart, URL: url})
	v.fire(useragent.Event{Type: useragent.EventLoadStop, URL: url})
}

// Dismiss simulates the user closing the view.
func (v *View) Dismiss() {
	_ = v.Close()
}

func (v *View) fire(ev useragent.Event) {
	v.mu.Lock()
	fns := make([]useragent.Listener, 0, len(v.listeners[ev.Type]))
	for _, fn := range v.listeners[ev.Type] {
		fns = append(fns, fn)
	}
	v.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// WaitForListener blocks until a listener for event is registered or timeout elapses.
func (v *View) WaitForListener(event useragent.EventType, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		v.mu.Lock()
		n := len(v.listeners[event])
		v.mu.Unlock()
		if n > 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// ListenerCount returns the number of listeners still registered.
func (v *View) ListenerCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, byID := range v.listeners {
		n += len(byID)
	}
	return n
}

func (v *View) Scripts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.scripts...)
}

func (v *View) CloseCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closes
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
