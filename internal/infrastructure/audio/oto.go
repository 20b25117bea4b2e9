package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"
)

// otoSink writes PCM to the host sound card through oto. The oto context is
// created lazily on first playback and exactly once for the process: oto
// does not support multiple contexts. When the device is slow to come up,
// the same context and its ready channel are kept across retries and
// adopted once ready.
// defaultReadyTimeout bounds how long one playback attempt waits for the
// device before reporting it blocked.
const defaultReadyTimeout = 3 * time.Second

type otoSink struct {
	log zerolog.Logger

	mu           sync.Mutex
	ctx          *oto.Context
	ready        <-chan struct{}
	readyTimeout time.Duration
}

func (s *otoSink) context() (*oto.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		ctx, ready, err := oto.NewContext(sampleRate, channelCount, bytesPerSample)
		if err != nil {
			return nil, err
		}
		s.ctx = ctx
		s.ready = ready
	}
	if s.ready != nil {
		timeout := s.readyTimeout
		if timeout == 0 {
			timeout = defaultReadyTimeout
		}
		select {
		case <-s.ready:
			s.ready = nil
		case <-time.After(timeout):
			// Still warming up; let the caller queue a retry against the
			// same context.
			return nil, errDeviceNotReady
		}
	}
	return s.ctx, nil
}

func (s *otoSink) playOnce(pcm []byte) error {
	ctx, err := s.context()
	if err != nil {
		return err
	}
	p := ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()
	go func() {
		// Poll until the buffer drains, then release the player.
		for p.IsPlaying() {
			time.Sleep(20 * time.Millisecond)
		}
		if err := p.Close(); err != nil {
			s.log.Debug().Err(err).Msg("close player")
		}
	}()
	return nil
}

func (s *otoSink) startLoop(pcm []byte) (stopFunc, error) {
	ctx, err := s.context()
	if err != nil {
		return nil, err
	}
	p := ctx.NewPlayer(&loopReader{pcm: pcm})
	p.SetVolume(1.0)
	p.Play()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.Pause()
			if err := p.Close(); err != nil {
				s.log.Debug().Err(err).Msg("close looping player")
			}
		})
	}, nil
}

// loopReader replays its PCM buffer forever; the player stops consuming it
// only when paused and closed.
type loopReader struct {
	pcm []byte
	pos int
}

func (r *loopReader) Read(p []byte) (int, error) {
	if len(r.pcm) == 0 {
		// Produce silence rather than EOF so the player never finishes.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.pcm[r.pos:])
		n += c
		r.pos += c
		if r.pos == len(r.pcm) {
			r.pos = 0
		}
	}
	return n, nil
}
