package http

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/internal/runtime"
	"github.com/stretchr/testify/require"
)

func TestServer_MutationsAreSerialised(t *testing.T) {
	ctx := context.Background()
	s := &Server{Engine: runtime.NewEngine(nil), Streams: NewStreamManager(), logger: logging.NewNop()}

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.mutate(ctx, func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	second := make(chan struct{})
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- s.mutate(ctx, func(context.Context) error {
			close(second)
			return nil
		})
	}()

	select {
	case <-second:
		t.Fatal("second mutation ran while the first was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-firstDone)
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("second mutation never ran")
	}
	require.NoError(t, <-secondDone)
}
