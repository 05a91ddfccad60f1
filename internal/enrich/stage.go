// Package enrich runs preparation steps over loaded records. Steps in one
// stage run in parallel on the same record; stages run in order.
package enrich

import (
	"context"
)

// Step mutates one record. Steps sharing a stage run concurrently on the same
// record, so each must write fields no sibling touches. An error is logged and
// counted; it does not stop the record.
type Step[T any] func(ctx context.Context, item *T) error

// Stage is a set of steps that may run in parallel. The pipeline waits for all
// of them before the next stage, so a later stage can read what an earlier
// one wrote.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}

// Named returns a copy of the stage that reports failures under name.
func (s Stage[T]) Named(name string) Stage[T] {
	s.name = name
	return s
}
