package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kbukum/webhost/logger"
)

// Hook is a callback run by Run at one lifecycle stage.
type Hook func(ctx context.Context) error

type stage int

const (
	stageStart stage = iota
	stageReady
	stageStop
	stageCount
)

var stageNames = [stageCount]string{"start", "ready", "stop"}

// OnStart hooks run after the components started, before route
// configuration.
func (a *App[C]) OnStart(hooks ...Hook) { a.addHooks(stageStart, hooks) }

// OnReady hooks run after the ready check, right before Run blocks.
func (a *App[C]) OnReady(hooks ...Hook) { a.addHooks(stageReady, hooks) }

// OnStop hooks run on shutdown before the components stop. All of them run
// even when one fails.
func (a *App[C]) OnStop(hooks ...Hook) { a.addHooks(stageStop, hooks) }

func (a *App[C]) addHooks(s stage, hooks []Hook) {
	a.hooks[s] = append(a.hooks[s], hooks...)
}

// runHooks runs the hooks of s in registration order. Start and ready
// stop at the first error; stop collects every error.
func (a *App[C]) runHooks(ctx context.Context, s stage) error {
	var errs []error
	for i, h := range a.hooks[s] {
		began := time.Now()
		err := h(ctx)
		a.Logger.Debug("Hook finished", logger.PhaseFields("on"+stageNames[s], time.Since(began)))
		if err == nil {
			continue
		}
		err = fmt.Errorf("on%s hook %d: %w", stageNames[s], i, err)
		if s != stageStop {
			return err
		}
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}
