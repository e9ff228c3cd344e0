package broker

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// closedAddr returns an address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	return addr
}

func TestWaitNoBrokers(t *testing.T) {
	err := Wait(context.Background(), "test", nil, 3, time.Millisecond)
	require.ErrorIs(t, err, ErrNoBrokers)

	err = EnsureTopic(context.Background(), nil, "send-file", 1, 1)
	require.ErrorIs(t, err, ErrNoBrokers)
}

func TestWaitGivesUp(t *testing.T) {
	err := Wait(context.Background(), "test", []string{closedAddr(t)}, 2, time.Millisecond)
	require.ErrorContains(t, err, "after 2 attempts")
}

func TestWaitStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, "test", []string{closedAddr(t)}, 100, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}
