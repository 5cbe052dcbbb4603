package middleware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
)

// ErrPipelinesFrozen is returned when a hook is added after startup.
var ErrPipelinesFrozen = errors.New("pipelines: frozen after startup")

// BeforeHook runs before the route handler. Returning false stops the
// request; the hook is then expected to have written a response.
type BeforeHook func(c *gin.Context) bool

// AfterHook runs once per request right before the response header is
// committed, so it can still add headers and cookies.
type AfterHook func(c *gin.Context)

type beforeEntry struct {
	name string
	hook BeforeHook
}

type afterEntry struct {
	name string
	hook AfterHook
}

// Pipelines holds the ordered before- and after-request hooks of the
// application. Hooks are registered during startup only.
type Pipelines struct {
	mu     sync.RWMutex
	before []beforeEntry
	after  []afterEntry
	frozen bool
}

// NewPipelines returns empty pipelines.
func NewPipelines() *Pipelines {
	return &Pipelines{}
}

// AddBefore appends a before-hook.
func (p *Pipelines) AddBefore(name string, hook BeforeHook) error {
	return p.withLock(name, hook == nil, func() {
		p.before = append(p.before, beforeEntry{name: name, hook: hook})
	})
}

// InsertBefore puts a before-hook at the front of the pipeline.
func (p *Pipelines) InsertBefore(name string, hook BeforeHook) error {
	return p.withLock(name, hook == nil, func() {
		p.before = append([]beforeEntry{{name: name, hook: hook}}, p.before...)
	})
}

// AddAfter appends an after-hook.
func (p *Pipelines) AddAfter(name string, hook AfterHook) error {
	return p.withLock(name, hook == nil, func() {
		p.after = append(p.after, afterEntry{name: name, hook: hook})
	})
}

// InsertAfter puts an after-hook at the front of the pipeline.
func (p *Pipelines) InsertAfter(name string, hook AfterHook) error {
	return p.withLock(name, hook == nil, func() {
		p.after = append([]afterEntry{{name: name, hook: hook}}, p.after...)
	})
}

func (p *Pipelines) withLock(name string, nilHook bool, add func()) error {
	if nilHook {
		return fmt.Errorf("pipelines: hook %q is nil", name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return fmt.Errorf("%w: cannot add %q", ErrPipelinesFrozen, name)
	}
	add()
	return nil
}

// Freeze rejects further registrations.
func (p *Pipelines) Freeze() {
	p.mu.Lock()
	p.frozen = true
	p.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (p *Pipelines) Frozen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frozen
}

// BeforeNames lists the before-hooks in execution order.
func (p *Pipelines) BeforeNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.before))
	for i, e := range p.before {
		names[i] = e.name
	}
	return names
}

// AfterNames lists the after-hooks in execution order.
func (p *Pipelines) AfterNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.after))
	for i, e := range p.after {
		names[i] = e.name
	}
	return names
}

func (p *Pipelines) snapshot() ([]beforeEntry, []afterEntry) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.before, p.after
}

// Commit returns the gin middleware that arms the after-hooks. Install it
// ahead of any middleware that may answer early so those responses pass
// through the after pipeline too.
func (p *Pipelines) Commit() gin.HandlerFunc {
	return func(c *gin.Context) {
		cw := p.arm(c)
		c.Next()
		// handlers that only set a status never touch the writer
		if cw != nil {
			cw.commit()
		}
	}
}

// Handler returns the gin middleware that executes the before-hooks and,
// unless Commit already did, arms the after-hooks.
func (p *Pipelines) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		before, _ := p.snapshot()
		cw := p.arm(c)

		for _, e := range before {
			if !e.hook(c) {
				c.Abort()
				if cw != nil {
					cw.commit()
				}
				return
			}
		}

		c.Next()

		if cw != nil {
			cw.commit()
		}
	}
}

// arm wraps the writer so the after-hooks run at commit. It returns nil when
// there is nothing to run or the writer is already armed by p.
func (p *Pipelines) arm(c *gin.Context) *commitWriter {
	if cw, ok := c.Writer.(*commitWriter); ok && cw.owner == p {
		return nil
	}
	_, after := p.snapshot()
	if len(after) == 0 {
		return nil
	}
	cw := newCommitWriter(c.Writer, p, func() {
		for _, e := range after {
			e.hook(c)
		}
	})
	c.Writer = cw
	return cw
}
