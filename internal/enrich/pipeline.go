package enrich

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Pipeline coordinates the execution of a sequence of stages for items flowing
// through a channel. For each incoming item, steps within the same stage run in
// parallel, and stages themselves run sequentially. Items are handled one at a
// time in arrival order.
type Pipeline[T any] struct {
	stages []Stage[T]
	logger *zap.Logger
}

// NewPipeline constructs a Pipeline from the provided stages. A nil logger
// discards step errors.
func NewPipeline[T any](logger *zap.Logger, stages ...Stage[T]) *Pipeline[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline[T]{stages: stages, logger: logger}
}

// Process consumes items until the input channel is closed. Step errors are
// logged and do not stop the item or the pipeline. It returns the number of
// step failures.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) int {
	var (
		mu       sync.Mutex
		failures int
	)
	for item := range in {
		for _, stage := range p.stages {
			var wg sync.WaitGroup
			for _, step := range stage.steps {
				wg.Add(1)
				go func(step Step[T]) {
					defer wg.Done()
					if err := step(ctx, item); err != nil {
						p.logger.Warn("step failed", zap.String("stage", stage.name), zap.Error(err))
						mu.Lock()
						failures++
						mu.Unlock()
					}
				}(step)
			}
			wg.Wait() // stage barrier
		}
	}
	return failures
}

// Run feeds items through the pipeline and blocks until all are processed.
func (p *Pipeline[T]) Run(ctx context.Context, items []*T) int {
	in := make(chan *T, len(items))
	for _, item := range items {
		in <- item
	}
	close(in)
	return p.Process(ctx, in)
}
