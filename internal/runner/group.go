package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Service is a long-running component started by a Group.
type Service interface {
	Name() string
	Run(context.Context) error
}

// Group runs services side by side. When one of them fails the others are
// cancelled, and Run returns once all have stopped.
type Group []Service

func (g Group) Run(ctx context.Context) error {
	if len(g) == 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(g))
	var wg sync.WaitGroup
	wg.Add(len(g))
	for _, s := range g {
		go func(s Service) {
			defer wg.Done()
			defer cancel()
			if err := s.Run(runCtx); err != nil {
				errCh <- fmt.Errorf("%s: %w", s.Name(), err)
			}
		}(s)
	}

	<-runCtx.Done()
	wg.Wait()
	close(errCh)

	var result *multierror.Error
	for err := range errCh {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Func adapts a function to Service.
type Func struct {
	ServiceName string
	Fn          func(context.Context) error
}

func (f Func) Name() string                  { return f.ServiceName }
func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }
