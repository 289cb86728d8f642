package smarttype

import (
	"codeberg.org/smarttype/smarttype/pkg/oracle"
	"context"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"testing"
	"time"
)

func TestEngineCorrectsTypedWord(t *testing.T) {
	device := &recordingDevice{}
	factory := &countingFactory{device: device}
	recorder := &fakeRecorder{}
	source := newScriptedSource("kbd",
		readResult{events: typed("teh ")},
		readResult{err: errGone},
	)

	e := NewEngine(
		[]EventSource{source},
		tableOracle(map[string]string{"teh": "the"}),
		factory,
		staticFlag(true),
		Options{Recorder: recorder},
		zaptest.NewLogger(t).Sugar(),
	)

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []CorrectionPair{{Old: "teh", New: "the"}}, recorder.Pairs())
	assert.Equal(t, []evdev.EvCode{
		evdev.KEY_BACKSPACE, evdev.KEY_BACKSPACE, evdev.KEY_BACKSPACE,
		evdev.KEY_T, evdev.KEY_H, evdev.KEY_E,
	}, device.Presses())
	assert.Equal(t, 1, factory.Calls())
	assert.Equal(t, int64(1), e.Stats().Corrections)

	require.NoError(t, e.Close())
	assert.True(t, device.closed)
}

func TestEngineKeepsRunningWhenOneDeviceGoes(t *testing.T) {
	device := &recordingDevice{}
	gone := newScriptedSource("mouse", readResult{err: errGone})
	keyboard := newScriptedSource("kbd")

	e := NewEngine(
		[]EventSource{gone, keyboard},
		tableOracle(map[string]string{"teh": "the"}),
		&countingFactory{device: device},
		staticFlag(true),
		Options{},
		zaptest.NewLogger(t).Sugar(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Run(ctx)
	}()

	keyboard.reads <- readResult{events: typed("teh ")}
	assert.Eventually(t, func() bool {
		return len(device.Presses()) == 6
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestEngineWithoutInjectionStillBuffers(t *testing.T) {
	factory := &countingFactory{err: assert.AnError}
	source := newScriptedSource("kbd",
		readResult{events: typed("teh teh ab")},
		readResult{err: errGone},
	)

	e := NewEngine(
		[]EventSource{source},
		tableOracle(map[string]string{"teh": "the"}),
		factory,
		staticFlag(true),
		Options{},
		zaptest.NewLogger(t).Sugar(),
	)

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, 1, factory.Calls())
	stats := e.Stats()
	assert.Equal(t, 1, stats.Devices)
	assert.Equal(t, len("teh teh ab"), stats.BufferedChars)
	assert.Zero(t, stats.Corrections)

	e.ResetBuffer()
	assert.Zero(t, e.Stats().BufferedChars)
}

func TestEngineLeavesContractionsAlone(t *testing.T) {
	device := &recordingDevice{}
	factory := &countingFactory{device: device}
	recorder := &fakeRecorder{}
	source := newScriptedSource("kbd",
		readResult{events: typed("don't wasn't didn't teh ")},
		readResult{err: errGone},
	)

	e := NewEngine(
		[]EventSource{source},
		oracle.New(map[string]string{"isnt": "isn't"}, oracle.DefaultMinWordLength),
		factory,
		staticFlag(true),
		Options{Recorder: recorder},
		zaptest.NewLogger(t).Sugar(),
	)

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []CorrectionPair{{Old: "teh", New: "the"}}, recorder.Pairs())
	assert.Equal(t, []evdev.EvCode{
		evdev.KEY_BACKSPACE, evdev.KEY_BACKSPACE, evdev.KEY_BACKSPACE,
		evdev.KEY_T, evdev.KEY_H, evdev.KEY_E,
	}, device.Presses())
}
