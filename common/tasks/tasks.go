package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group is an errgroup that turns panics in its goroutines into errors.
// HandleCrit, if set, is also told about every panic. The zero value is ready to use.
type Group struct {
	HandleCrit func(err error)

	once     sync.Once
	errGroup *errgroup.Group
}

// WithContext returns a Group whose context is cancelled by the first
// failing goroutine.
func WithContext(ctx context.Context, handleCrit func(err error)) (*Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	t := &Group{HandleCrit: handleCrit, errGroup: g}
	return t, gctx
}

func (t *Group) group() *errgroup.Group {
	t.once.Do(func() {
		if t.errGroup == nil {
			t.errGroup = new(errgroup.Group)
		}
	})
	return t.errGroup
}

func (t *Group) Go(fn func() error) {
	t.group().Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
				err = fmt.Errorf("panic: %v", r)
				if t.HandleCrit != nil {
					t.HandleCrit(err)
				}
			}
		}()
		return fn()
	})
}

func (t *Group) Wait() error {
	return t.group().Wait()
}
