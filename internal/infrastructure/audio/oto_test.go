package audio

import (
	"testing"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowDeviceSink builds a sink whose context already exists but whose device
// has not signalled ready yet, the state a slow audio server leaves us in.
func slowDeviceSink() (*otoSink, chan struct{}) {
	ready := make(chan struct{})
	return &otoSink{
		log:          zerolog.Nop(),
		ctx:          &oto.Context{},
		ready:        ready,
		readyTimeout: 20 * time.Millisecond,
	}, ready
}

func TestContextKeptAcrossReadyTimeouts(t *testing.T) {
	s, ready := slowDeviceSink()
	created := s.ctx

	_, err := s.context()
	require.ErrorIs(t, err, errDeviceNotReady)
	assert.Same(t, created, s.ctx, "a timeout must not discard the context")

	// Device comes up; the next retry adopts the same context instead of
	// creating a second one.
	close(ready)
	got, err := s.context()
	require.NoError(t, err)
	assert.Same(t, created, got)

	// Once adopted, later calls skip the ready wait entirely.
	got, err = s.context()
	require.NoError(t, err)
	assert.Same(t, created, got)
}

func TestContextReadyTimeoutRepeats(t *testing.T) {
	s, _ := slowDeviceSink()

	for i := 0; i < 3; i++ {
		_, err := s.context()
		assert.ErrorIs(t, err, errDeviceNotReady)
	}
	assert.NotNil(t, s.ctx)
}
