package poller

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestA2SQuerier_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewA2SQuerier().Query(ctx, "127.0.0.1:27015", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestA2SQuerier_SilentServerTimesOut(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	start := time.Now()
	_, err = NewA2SQuerier().Query(context.Background(), conn.LocalAddr().String(), 100*time.Millisecond)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
