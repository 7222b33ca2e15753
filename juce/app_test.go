package juce

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/juce-runtime/errors"
)

type greeting struct{ text string }

type testApp struct {
	handle      *AppHandle
	commandLine string
	initErr     error
	onInit      func(h *AppHandle)
	ticks       int
	timerIDs    []int
	quitAfter   int
	events      []string
	greetings   []string
	shutdown    int
	drops       int
}

func (a *testApp) Name() string    { return "test app" }
func (a *testApp) Version() string { return "1.0.0" }

func (a *testApp) Initialise(h *AppHandle, commandLine string) error {
	a.handle = h
	a.commandLine = commandLine
	if a.initErr != nil {
		return a.initErr
	}
	if a.onInit != nil {
		a.onInit(h)
	}
	return nil
}

func (a *testApp) Shutdown() { a.shutdown++ }

func (a *testApp) TimerCallback(id int) {
	a.ticks++
	a.timerIDs = append(a.timerIDs, id)
	if a.ticks == a.quitAfter {
		a.handle.StopTimer(id)
		a.handle.QuitWithCode(7)
	}
}

func (a *testApp) Suspended() { a.events = append(a.events, "suspended") }
func (a *testApp) Resumed()   { a.events = append(a.events, "resumed") }

func (a *testApp) AnotherInstanceStarted(commandLine string) {
	a.events = append(a.events, "another:"+commandLine)
}

func (a *testApp) On(g greeting) { a.greetings = append(a.greetings, g.text) }

func (a *testApp) Drop() { a.drops++ }

func runTestApp(t *testing.T, app *testApp, commandLine string) int {
	t.Helper()
	code, err := RunAppWithCommandLine(func() App { return app }, commandLine)
	require.NoError(t, err)
	return code
}

func TestRunAppTimerQuit(t *testing.T) {
	app := &testApp{quitAfter: 3}
	app.onInit = func(h *AppHandle) {
		require.NoError(t, h.StartTimer(1, 2*time.Millisecond))
	}

	code := runTestApp(t, app, "--flag value")
	assert.Equal(t, 7, code)
	assert.Equal(t, 3, app.ticks)
	assert.Equal(t, "--flag value", app.commandLine)
	assert.Equal(t, 1, app.shutdown)
	assert.Equal(t, 1, app.drops)
	assert.False(t, IsInitialised(), "RunApp closes the runtime it started")
}

func TestRunAppMessages(t *testing.T) {
	app := &testApp{}
	app.onInit = func(h *AppHandle) {
		require.True(t, Send(h, greeting{"hello"}))
		require.True(t, h.Signal(Suspended, ""))
		require.True(t, h.Signal(Resumed, ""))
		require.True(t, h.Signal(AnotherInstanceStarted, "--open a.wav"))
		require.True(t, Send(h, "not accepted"))
		require.True(t, h.Post(func(a App) {
			a.(*testApp).greetings = append(a.(*testApp).greetings, "posted")
		}))
		require.True(t, h.Signal(QuitRequested, ""))
	}

	code := runTestApp(t, app, "")
	assert.Zero(t, code)
	assert.Equal(t, []string{"hello", "posted"}, app.greetings)
	assert.Equal(t, []string{"suspended", "resumed", "another:--open a.wav"}, app.events)
	assert.Equal(t, 1, app.shutdown)

	assert.False(t, app.handle.Post(func(App) { t.Error("posted to a finished app") }))
	assert.False(t, app.handle.Signal(Resumed, ""))
}

func TestRunAppInitialiseError(t *testing.T) {
	app := &testApp{initErr: fmt.Errorf("no config")}
	code, err := RunAppWithCommandLine(func() App { return app }, "")
	require.Error(t, err)
	assert.EqualError(t, err, "no config")
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, app.shutdown)
	assert.Equal(t, 1, app.drops)
}

func TestRunAppWhileRunning(t *testing.T) {
	var (
		nestedCode int
		nestedErr  error
	)
	nested := &testApp{}
	app := &testApp{}
	app.onInit = func(h *AppHandle) {
		nestedCode, nestedErr = RunAppWithCommandLine(func() App { return nested }, "")
		h.Quit()
	}

	runTestApp(t, app, "")
	assert.Equal(t, -1, nestedCode)
	assert.ErrorIs(t, nestedErr, errors.ErrInitialisedOnAnotherThread)
	assert.Zero(t, nested.shutdown)
	assert.Equal(t, 1, nested.drops, "refused app is dropped")
	assert.Equal(t, 1, app.drops)
}

func TestRunAppOnAnotherThread(t *testing.T) {
	startRuntime(t)

	var err error
	onOtherThread(func() {
		_, err = RunAppWithCommandLine(func() App { return &testApp{} }, "")
	})
	assert.ErrorIs(t, err, errors.ErrInitialisedOnAnotherThread)
}

func TestAppTimerLimit(t *testing.T) {
	app := &testApp{}
	var limitErr error
	app.onInit = func(h *AppHandle) {
		for id := range 64 {
			require.NoError(t, h.StartTimer(id, time.Hour))
		}
		require.NoError(t, h.StartTimer(0, time.Hour), "restarting a timer needs no new slot")
		limitErr = h.StartTimer(64, time.Hour)
		assert.True(t, h.StopTimer(10))
		assert.False(t, h.StopTimer(10))
		h.Quit()
	}

	runTestApp(t, app, "")
	require.Error(t, limitErr)
	assert.ErrorIs(t, limitErr, errors.ErrForeignFailure)
}

func TestTimerMillisSaturates(t *testing.T) {
	assert.Equal(t, int32(250), timerMillis(250*time.Millisecond))
	assert.Equal(t, int32(0), timerMillis(-time.Second))
	assert.Equal(t, int32(math.MaxInt32), timerMillis(time.Duration(math.MaxInt64)))
	assert.Equal(t, int32(math.MaxInt32), timerMillis(time.Duration(math.MaxInt32+1)*time.Millisecond))
}

func TestAppTimerLongInterval(t *testing.T) {
	app := &testApp{quitAfter: 3}
	app.onInit = func(h *AppHandle) {
		require.NoError(t, h.StartTimer(2, time.Duration(math.MaxInt64)))
		require.NoError(t, h.StartTimer(1, 2*time.Millisecond))
	}

	assert.Equal(t, 7, runTestApp(t, app, ""))
	assert.Equal(t, []int{1, 1, 1}, app.timerIDs, "the long timer never fires")
}

func TestAppEventString(t *testing.T) {
	assert.Equal(t, "quit requested", QuitRequested.String())
	assert.Equal(t, "another instance started", AnotherInstanceStarted.String())
	assert.Equal(t, "unknown", AppEvent(99).String())
}
