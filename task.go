package main

import (
	"context"
	"fmt"
	"log/slog"
)

// artTask runs one generation on its own goroutine. The result is
// delivered exactly once; Done is closed when it is ready.
type artTask struct {
	done   chan struct{}
	result Generation
}

func startArtTask(ctx context.Context, logger *slog.Logger, fn func() Generation) *artTask {
	t := &artTask{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		// A panicking adapter degrades to the placeholder like any other failure
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "art generation panicked, using placeholder", "panic", fmt.Sprint(r))
				t.result = Generation{UsedPlaceholder: true}
			}
		}()
		t.result = fn()
	}()
	return t
}

// Done is closed once the generation has finished
func (t *artTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the generation finishes and returns its result
func (t *artTask) Wait() Generation {
	<-t.done
	return t.result
}
