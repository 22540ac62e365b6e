package autosave

import (
	"context"
	"sync"
	"time"

	"pagenest/internal/page/model"
	"pagenest/pkg/logger"
)

// Draft is the in-memory edit buffer for the open page. All three fields are
// flushed together in a single write.
type Draft struct {
	PageID  string
	Title   string
	Content string
	Icon    string
}

// FlushFunc persists a draft. A failed flush is logged and dropped: no retry,
// no rollback, no client notification.
type FlushFunc func(ctx context.Context, draft Draft) error

// Controller debounces edits to the open page. Every mutation (re)arms a
// trailing-edge timer; if the quiet period elapses without another edit, the
// buffer as of the last edit is flushed exactly once. Switching pages or
// tearing the session down cancels a pending flush outright — the final
// unsaved edit is lost, which is the intended navigate-away behavior.
type Controller struct {
	delay time.Duration
	flush FlushFunc

	mu     sync.Mutex
	draft  Draft
	seeded bool
	timer  *time.Timer
	gen    uint64
}

func New(delay time.Duration, flush FlushFunc) *Controller {
	if delay <= 0 {
		delay = time.Second
	}
	return &Controller{delay: delay, flush: flush}
}

// Seed loads the buffers from a freshly opened page, discarding any pending
// flush for the previously open one.
func (c *Controller) Seed(p model.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.draft = Draft{PageID: p.ID, Title: p.Title, Content: p.Content, Icon: p.Icon}
	c.seeded = true
}

func (c *Controller) SetTitle(title string) {
	c.edit(func(d *Draft) { d.Title = title })
}

func (c *Controller) SetContent(content string) {
	c.edit(func(d *Draft) { d.Content = content })
}

func (c *Controller) SetIcon(icon string) {
	c.edit(func(d *Draft) { d.Icon = icon })
}

// Close cancels any pending flush without issuing it and leaves the
// controller unseeded. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.seeded = false
}

// Pending reports whether a flush is armed. Only the timer firing moves the
// controller back to idle; edits keep it pending with a fresh deadline.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Controller) edit(apply func(*Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seeded {
		return
	}
	apply(&c.draft)
	c.armLocked()
}

func (c *Controller) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
}

func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	// Invalidate a timer callback that already fired and is waiting on the lock.
	c.gen++
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	d := c.draft
	c.timer = nil
	c.mu.Unlock()

	if err := c.flush(context.Background(), d); err != nil {
		logger.Sugar.Errorf("Autosave flush for page %s dropped: %v", d.PageID, err)
	}
}
