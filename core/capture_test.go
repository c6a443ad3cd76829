package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/voxloop/voxloop-core/core/audio"
)

func captureTestTunables() Tunables {
	t := DefaultTunables()
	t.DebounceDelay = 30 * time.Millisecond
	t.HesitationDebounce = 200 * time.Millisecond
	t.WaitExtension = 120 * time.Millisecond
	t.RepeatConfirmWindow = 300 * time.Millisecond
	return t
}

func captureForTest() (*captureController, chan Utterance, chan struct{}) {
	encoding := audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingLinear16}
	c := newCaptureController(encoding, captureTestTunables(), noopEventEmitter)

	submitted := make(chan Utterance, 1)
	aborted := make(chan struct{}, 1)
	c.onSubmit = func(utterance Utterance) { submitted <- utterance }
	c.onAborted = func() { aborted <- struct{}{} }
	return c, submitted, aborted
}

func TestCaptureStartRejectsSecondSession(t *testing.T) {
	c, _, _ := captureForTest()

	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := c.Start(CaptureModeHandsFree); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second start returned %v, want ErrAlreadyRecording", err)
	}

	c.Abort()
	if err := c.Start(CaptureModeHandsFree); err != nil {
		t.Fatalf("start after abort failed: %v", err)
	}
}

func TestCaptureDebounceSubmits(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("turn on the kitchen lights")

	select {
	case utterance := <-submitted:
		if utterance.Text != "turn on the kitchen lights" {
			t.Fatalf("submitted %q", utterance.Text)
		}
		if utterance.RequestID == "" {
			t.Fatalf("utterance has no request id")
		}
	case <-time.After(time.Second):
		t.Fatalf("debounce never submitted")
	}

	if c.Active() {
		t.Fatalf("session still active after submit")
	}
}

func TestCaptureInterimUpdatesHoldDebounce(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("turn on the")
	for i := 0; i < 4; i++ {
		time.Sleep(15 * time.Millisecond)
		c.OnInterimTranscript("kitchen")
	}

	select {
	case utterance := <-submitted:
		t.Fatalf("submitted %q while interim updates were arriving", utterance.Text)
	default:
	}

	c.OnFinalSegment("kitchen lights")
	select {
	case utterance := <-submitted:
		if utterance.Text != "turn on the kitchen lights" {
			t.Fatalf("submitted %q", utterance.Text)
		}
	case <-time.After(time.Second):
		t.Fatalf("debounce never submitted after interim updates stopped")
	}
}

func TestCaptureFillerOnlyIsNotSubmitted(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModeHandsFree); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("um, uh")

	select {
	case utterance := <-submitted:
		t.Fatalf("filler-only transcript was submitted: %q", utterance.Text)
	case <-time.After(150 * time.Millisecond):
	}
	if !c.Active() {
		t.Fatalf("filler rejection closed the session")
	}
}

func TestCaptureHallucinationIsDiscardedSilently(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModeHandsFree); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("Thanks for watching!")

	select {
	case utterance := <-submitted:
		t.Fatalf("hallucinated transcript was submitted: %q", utterance.Text)
	case <-time.After(150 * time.Millisecond):
	}
	if !c.Active() {
		t.Fatalf("hallucination rejection closed the session")
	}
	if got := c.Transcript(); got != "" {
		t.Fatalf("hallucinated transcript was retained: %q", got)
	}
}

func TestCaptureHomophoneRequiresRepetition(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModeHandsFree); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("yes")
	c.Stop()
	select {
	case utterance := <-submitted:
		t.Fatalf("lone short word was submitted: %q", utterance.Text)
	default:
	}
	if !c.Active() {
		t.Fatalf("homophone rejection closed the session")
	}

	// The same word again within the confirmation window is accepted.
	c.Stop()
	select {
	case utterance := <-submitted:
		if utterance.Text != "yes" {
			t.Fatalf("submitted %q, want %q", utterance.Text, "yes")
		}
	case <-time.After(time.Second):
		t.Fatalf("repeated short word was never accepted")
	}
}

func TestCaptureWaitTriggerExtendsCompletion(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	waitRequested := make(chan struct{}, 1)
	c.onWaitExtended = func() { waitRequested <- struct{}{} }

	c.OnFinalSegment("set a reminder for tomorrow, wait")

	select {
	case <-waitRequested:
	case <-time.After(time.Second):
		t.Fatalf("wait trigger did not signal the extended state")
	}

	// Nothing submits while the extension is running, even past the normal
	// debounce.
	select {
	case utterance := <-submitted:
		t.Fatalf("submitted %q during wait extension", utterance.Text)
	case <-time.After(60 * time.Millisecond):
	}

	select {
	case utterance := <-submitted:
		if utterance.Text != "set a reminder for tomorrow" {
			t.Fatalf("submitted %q, trigger word not stripped", utterance.Text)
		}
	case <-time.After(time.Second):
		t.Fatalf("extended completion timer never fired")
	}
}

func TestCaptureOverTriggerSubmitsImmediately(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("play some jazz, over")

	select {
	case utterance := <-submitted:
		if utterance.Text != "play some jazz" {
			t.Fatalf("submitted %q, trigger word not stripped", utterance.Text)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("over trigger did not bypass the debounce")
	}
}

func TestCaptureHesitationUsesLongerDebounce(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("and then maybe we could, um")

	// Past the normal debounce but inside the hesitation debounce.
	select {
	case utterance := <-submitted:
		t.Fatalf("hesitating speaker was cut off: %q", utterance.Text)
	case <-time.After(80 * time.Millisecond):
	}

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatalf("hesitation debounce never fired")
	}
}

func TestCaptureStopWithEmptyTranscriptAborts(t *testing.T) {
	c, submitted, aborted := captureForTest()
	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.Stop()

	select {
	case <-aborted:
	case <-time.After(time.Second):
		t.Fatalf("empty stop did not abort")
	}
	select {
	case utterance := <-submitted:
		t.Fatalf("empty session submitted %q", utterance.Text)
	default:
	}
}

func TestCaptureSilenceAfterSpeechSubmits(t *testing.T) {
	c, submitted, _ := captureForTest()
	if err := c.Start(CaptureModeHandsFree); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c.OnFinalSegment("what is the weather like today")

	// Loud speech then sustained silence drives the detector, which should
	// submit without waiting for the debounce timer.
	d := c.detector
	c.FeedAudio(pcmWindows(t, d, 8000, 16))
	c.FeedAudio(pcmWindows(t, d, 0, 20))

	select {
	case utterance := <-submitted:
		if utterance.Text != "what is the weather like today" {
			t.Fatalf("submitted %q", utterance.Text)
		}
	case <-time.After(time.Second):
		t.Fatalf("silence completion never submitted")
	}
}

func TestCaptureSessionCeilingSubmitsPendingTranscript(t *testing.T) {
	tunables := captureTestTunables()
	tunables.DebounceDelay = 5 * time.Second
	tunables.SafetyCeiling = 80 * time.Millisecond

	encoding := audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingLinear16}
	c := newCaptureController(encoding, tunables, noopEventEmitter)
	submitted := make(chan Utterance, 1)
	c.onSubmit = func(utterance Utterance) { submitted <- utterance }

	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	c.OnFinalSegment("turn on the lights")

	// The debounce would not fire for seconds; the session cap submits first.
	select {
	case utterance := <-submitted:
		if utterance.Text != "turn on the lights" {
			t.Fatalf("submitted %q", utterance.Text)
		}
	case <-time.After(time.Second):
		t.Fatalf("session ceiling never submitted")
	}
	if c.Active() {
		t.Fatalf("session still active after ceiling")
	}
}

func TestCaptureSessionCeilingClosesRejectedSession(t *testing.T) {
	tunables := captureTestTunables()
	tunables.RepeatConfirmWindow = 10 * time.Millisecond
	tunables.SafetyCeiling = 80 * time.Millisecond

	encoding := audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingLinear16}
	c := newCaptureController(encoding, tunables, noopEventEmitter)
	submitted := make(chan Utterance, 1)
	aborted := make(chan struct{}, 1)
	c.onSubmit = func(utterance Utterance) { submitted <- utterance }
	c.onAborted = func() { aborted <- struct{}{} }

	if err := c.Start(CaptureModePushToTalk); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// The debounce rejects a lone homophone-risk word and stops itself; with
	// no further recognizer input, only the session cap can close the session.
	c.OnFinalSegment("okay")

	select {
	case <-aborted:
	case <-time.After(time.Second):
		t.Fatalf("stalled session never closed")
	}
	if c.Active() {
		t.Fatalf("session still active after ceiling")
	}
	select {
	case utterance := <-submitted:
		t.Fatalf("rejected word submitted as %q", utterance.Text)
	default:
	}
}
