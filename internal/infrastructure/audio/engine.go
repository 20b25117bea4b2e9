// Package audio produces the agent's audible cues. All sounds are
// synthesized, so the engine works with zero assets on the host; when no
// output device can be opened it degrades to silent operation and never
// surfaces an error into the alert pipeline.
package audio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// stopFunc halts an in-progress looping playback. Safe to call once.
type stopFunc func()

// sink is the output-device seam. Tests substitute a counting fake.
type sink interface {
	playOnce(pcm []byte) error
	startLoop(pcm []byte) (stopFunc, error)
}

// Engine is the process-wide audio service: one output device per process,
// shared by both audiences. The looping alert is reserved for the admin
// channel and is mutually exclusive with itself (a restart, never a stack).
type Engine struct {
	log zerolog.Logger
	out sink

	chime []byte
	siren []byte
	click []byte

	mu          sync.Mutex
	oneShotBusy bool
	loopStop    stopFunc
	pendingLoop bool
}

func NewEngine(log zerolog.Logger) *Engine {
	return newEngine(&otoSink{log: log}, log)
}

func newEngine(out sink, log zerolog.Logger) *Engine {
	return &Engine{
		log:   log.With().Str("component", "audio").Logger(),
		out:   out,
		chime: chimePCM(),
		siren: sirenPCM(),
		click: clickPCM(),
	}
}

// PlayOneShot plays the client notification chime. While a chime is still
// sounding, further calls are no-ops so that count updates landing close
// together do not stack audio.
func (e *Engine) PlayOneShot() {
	e.mu.Lock()
	if e.oneShotBusy {
		e.mu.Unlock()
		return
	}
	e.oneShotBusy = true
	e.mu.Unlock()

	if err := e.out.playOnce(e.chime); err != nil {
		e.log.Debug().Err(err).Msg("one-shot chime unavailable")
	}
	time.AfterFunc(pcmDuration(e.chime), func() {
		e.mu.Lock()
		e.oneShotBusy = false
		e.mu.Unlock()
	})
}

// PlayLoopingAlert starts the admin alert loop at maximum volume. If a loop
// is already sounding it is restarted. When the output device cannot be
// opened (busy, no audio server yet), the start is queued and retried on the
// next user interaction rather than failing permanently.
func (e *Engine) PlayLoopingAlert() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loopStop != nil {
		e.loopStop()
		e.loopStop = nil
	}
	e.startLoopLocked()
}

// StopLoopingAlert pauses and discards the looping alert. Calling it when
// nothing is playing is a no-op.
func (e *Engine) StopLoopingAlert() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pendingLoop = false
	if e.loopStop != nil {
		e.loopStop()
		e.loopStop = nil
	}
}

// PlayClickCue gives short feedback for UI interactions (dropdown open). It
// is independent of the alert sounds and never loops.
func (e *Engine) PlayClickCue() {
	if err := e.out.playOnce(e.click); err != nil {
		e.log.Debug().Err(err).Msg("click cue unavailable")
	}
}

// NotifyInteraction is invoked on any user interaction routed through the
// agent. A looping alert whose start was blocked earlier is started
// retroactively here.
func (e *Engine) NotifyInteraction() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pendingLoop {
		return
	}
	e.pendingLoop = false
	e.startLoopLocked()
}

// IsLooping reports whether the admin alert is currently sounding or queued
// to start on the next interaction.
func (e *Engine) IsLooping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loopStop != nil || e.pendingLoop
}

// startLoopLocked attempts to start the siren loop. mu must be held.
func (e *Engine) startLoopLocked() {
	stop, err := e.out.startLoop(e.siren)
	if err != nil {
		e.pendingLoop = true
		e.log.Warn().Err(err).Msg("looping alert blocked, queued for next interaction")
		return
	}
	e.loopStop = stop
}

// pcmDuration converts a PCM buffer length back into wall time.
func pcmDuration(pcm []byte) time.Duration {
	frames := len(pcm) / (channelCount * bytesPerSample)
	return time.Duration(frames) * time.Second / sampleRate
}
