package action

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/hotlines/internal/clock"
	"github.com/starford/hotlines/internal/models"
)

type fakePlatform struct {
	mu        sync.Mutex
	canShare  bool
	probes    int
	shareErr  error
	shared    []SharePayload
	clipErr   error
	clipboard []string
	dialed    []string
}

func (p *fakePlatform) CanShare() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
	return p.canShare
}

func (p *fakePlatform) Share(_ context.Context, s SharePayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shared = append(p.shared, s)
	return p.shareErr
}

func (p *fakePlatform) WriteText(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clipboard = append(p.clipboard, text)
	return p.clipErr
}

func (p *fakePlatform) Dial(_ context.Context, number string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialed = append(p.dialed, number)
	return nil
}

func (p *fakePlatform) caps() Capabilities {
	return Capabilities{Sharer: p, Clipboard: p, Dialer: p, Probe: p}
}

var police = models.Contact{
	ID:          "100",
	Number:      "100",
	Name:        models.LocalizedText{"he": "משטרת ישראל", "en": "Israel Police", "ru": "Полиция Израиля"},
	Description: models.LocalizedText{"he": "מוקד חירום משטרה", "en": "Police Emergency Hotline", "ru": "Экстренный вызов полиции"},
	Category:    models.CategoryEmergency,
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestController(t *testing.T, p *fakePlatform) (*Controller, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Unix(0, 0))
	c := New(police, models.LangEnglish, p.caps(),
		WithClock(clk), WithLogger(quiet), WithPageURL("https://example.test/"))
	t.Cleanup(c.Unmount)
	return c, clk
}

func TestInitialStateIdle(t *testing.T) {
	c, _ := newTestController(t, &fakePlatform{})
	if c.State() != Idle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestShareProbedOnce(t *testing.T) {
	p := &fakePlatform{canShare: true}
	c, _ := newTestController(t, p)
	c.Primary(context.Background())
	c.Primary(context.Background())
	_ = c.ShareCapable()
	if p.probes != 1 {
		t.Errorf("probes = %d, want 1", p.probes)
	}
}

func TestCopy_RoundTrip(t *testing.T) {
	p := &fakePlatform{}
	c, clk := newTestController(t, p)

	c.Copy(context.Background())
	if c.State() != Confirming {
		t.Fatalf("state after copy = %v, want confirming", c.State())
	}
	if len(p.clipboard) != 1 || p.clipboard[0] != "Israel Police: 100" {
		t.Errorf("clipboard = %q", p.clipboard)
	}

	clk.Advance(1999 * time.Millisecond)
	if c.State() != Confirming {
		t.Fatalf("state at 1999ms = %v, want confirming", c.State())
	}
	clk.Advance(time.Millisecond)
	if c.State() != Idle {
		t.Fatalf("state at 2000ms = %v, want idle", c.State())
	}
}

func TestCopy_Debounce(t *testing.T) {
	c, clk := newTestController(t, &fakePlatform{})
	ctx := context.Background()

	c.Copy(ctx)
	clk.Advance(1000 * time.Millisecond)
	c.Copy(ctx)

	clk.Advance(1000 * time.Millisecond) // t=2000
	if c.State() != Confirming {
		t.Fatalf("state at t=2000 = %v, want confirming", c.State())
	}
	clk.Advance(999 * time.Millisecond) // t=2999
	if c.State() != Confirming {
		t.Fatalf("state at t=2999 = %v, want confirming", c.State())
	}
	clk.Advance(time.Millisecond) // t=3000
	if c.State() != Idle {
		t.Fatalf("state at t=3000 = %v, want idle", c.State())
	}
	if clk.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", clk.Pending())
	}
}

func TestCopy_RapidRepeatsNotifyOnce(t *testing.T) {
	c, clk := newTestController(t, &fakePlatform{})
	var mu sync.Mutex
	var changes []State
	c.OnChange(func(s State) {
		mu.Lock()
		changes = append(changes, s)
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		c.Copy(context.Background())
		clk.Advance(500 * time.Millisecond)
	}
	clk.Advance(2 * time.Second)

	if len(changes) != 2 || changes[0] != Confirming || changes[1] != Idle {
		t.Errorf("changes = %v, want [confirming idle]", changes)
	}
}

func TestOnChange_ReentrantTransitionsAreQueued(t *testing.T) {
	c, clk := newTestController(t, &fakePlatform{})
	var changes []State
	depth, maxDepth := 0, 0
	c.OnChange(func(s State) {
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		changes = append(changes, s)
		switch len(changes) {
		case 1:
			// The window closes while confirming is still being delivered.
			clk.Advance(2 * time.Second)
		case 2:
			// A copy lands while idle is being delivered.
			c.Copy(context.Background())
		}
		depth--
	})

	c.Copy(context.Background())

	want := []State{Confirming, Idle, Confirming}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("changes = %v, want %v", changes, want)
		}
	}
	if maxDepth != 1 {
		t.Errorf("callback nested %d deep, want serialized delivery", maxDepth)
	}
	if c.State() != Confirming {
		t.Errorf("state = %v, want confirming", c.State())
	}
}

func TestOnChange_LastDeliveredMatchesState(t *testing.T) {
	c, clk := newTestController(t, &fakePlatform{})
	var mu sync.Mutex
	var last State
	var inFlight, overlaps int32
	c.OnChange(func(s State) {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		mu.Lock()
		last = s
		mu.Unlock()
		atomic.AddInt32(&inFlight, -1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Copy(context.Background())
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			clk.Advance(time.Second)
		}
	}()
	wg.Wait()

	if n := atomic.LoadInt32(&overlaps); n != 0 {
		t.Errorf("%d overlapping deliveries", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if last != c.State() {
		t.Errorf("last delivered %v, state %v", last, c.State())
	}
}

func TestCopy_ClipboardFailureStillConfirms(t *testing.T) {
	c, _ := newTestController(t, &fakePlatform{clipErr: errors.New("denied")})
	c.Copy(context.Background())
	if c.State() != Confirming {
		t.Errorf("state = %v, want confirming", c.State())
	}
}

func TestPrimary_Shares(t *testing.T) {
	p := &fakePlatform{canShare: true}
	c, _ := newTestController(t, p)

	c.Primary(context.Background())
	if len(p.shared) != 1 {
		t.Fatalf("shares = %d, want 1", len(p.shared))
	}
	want := SharePayload{
		Title: "Israel Police",
		Text:  "Israel Police: 100\nPolice Emergency Hotline",
		URL:   "https://example.test/",
	}
	if p.shared[0] != want {
		t.Errorf("payload = %+v, want %+v", p.shared[0], want)
	}
	if len(p.clipboard) != 0 || c.State() != Idle {
		t.Error("share should not copy or confirm")
	}
}

func TestPrimary_ShareFailureSwallowed(t *testing.T) {
	p := &fakePlatform{canShare: true, shareErr: errors.New("AbortError")}
	c, _ := newTestController(t, p)

	c.Primary(context.Background())
	if c.State() != Idle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if len(p.clipboard) != 0 {
		t.Error("failed share must not fall back to copy")
	}
}

func TestPrimary_FallsBackToCopy(t *testing.T) {
	p := &fakePlatform{canShare: false}
	c, _ := newTestController(t, p)

	c.Primary(context.Background())
	if len(p.shared) != 0 {
		t.Error("should not share when unsupported")
	}
	if len(p.clipboard) != 1 || c.State() != Confirming {
		t.Errorf("clipboard = %q state = %v", p.clipboard, c.State())
	}
}

func TestPrimary_NoSharerMeansNotCapable(t *testing.T) {
	p := &fakePlatform{canShare: true}
	c := New(police, models.LangEnglish, Capabilities{Clipboard: p, Probe: p}, WithLogger(quiet))
	defer c.Unmount()
	if c.ShareCapable() {
		t.Error("capable without a sharer")
	}
}

func TestDialNumber_Confirmed(t *testing.T) {
	p := &fakePlatform{}
	c, _ := newTestController(t, p)
	var asked string
	ok := c.DialNumber(context.Background(), ConfirmFunc(func(_ context.Context, msg string) bool {
		asked = msg
		return true
	}))
	if !ok || len(p.dialed) != 1 || p.dialed[0] != "100" {
		t.Fatalf("ok = %v dialed = %v", ok, p.dialed)
	}
	if asked != "Dial 100?" {
		t.Errorf("prompt = %q, want %q", asked, "Dial 100?")
	}
}

func TestDialNumber_Declined(t *testing.T) {
	p := &fakePlatform{}
	c, _ := newTestController(t, p)
	ok := c.DialNumber(context.Background(), ConfirmFunc(func(context.Context, string) bool { return false }))
	if ok || len(p.dialed) != 0 || c.State() != Idle {
		t.Errorf("ok = %v dialed = %v state = %v", ok, p.dialed, c.State())
	}
}

func TestDialPrompt_Localized(t *testing.T) {
	c := New(police, models.LangHebrew, Capabilities{}, WithLogger(quiet))
	defer c.Unmount()
	if got := c.DialPrompt(); got != "האם לחייג למספר 100?" {
		t.Errorf("prompt = %q", got)
	}
}

func TestCall_NoConfirmation(t *testing.T) {
	p := &fakePlatform{}
	c, _ := newTestController(t, p)
	c.Call(context.Background())
	if len(p.dialed) != 1 || p.dialed[0] != "100" {
		t.Errorf("dialed = %v", p.dialed)
	}
}

func TestUnmount_CancelsTimer(t *testing.T) {
	p := &fakePlatform{}
	c, clk := newTestController(t, p)
	transitions := 0
	c.OnChange(func(State) { transitions++ })

	c.Copy(context.Background())
	c.Unmount()
	if clk.Pending() != 0 {
		t.Errorf("pending timers after unmount = %d", clk.Pending())
	}
	clk.Advance(time.Minute)
	if transitions != 1 {
		t.Errorf("transitions = %d, want 1 (no late idle)", transitions)
	}

	c.Copy(context.Background())
	c.Call(context.Background())
	if len(p.clipboard) != 1 || len(p.dialed) != 0 {
		t.Error("actions after unmount should be ignored")
	}
}

func TestStaleTimerDoesNotTransition(t *testing.T) {
	c, clk := newTestController(t, &fakePlatform{})
	c.Copy(context.Background())
	clk.Advance(500 * time.Millisecond)
	c.Copy(context.Background())

	// The first timer's callback arriving after it was superseded.
	c.expire(1)
	if c.State() != Confirming {
		t.Errorf("stale expiry changed state to %v", c.State())
	}
}

func TestRealClock_NoLeakAfterUnmount(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := &fakePlatform{}
	c := New(police, models.LangEnglish, p.caps(), WithLogger(quiet), WithConfirmWindow(time.Hour))
	c.Copy(context.Background())
	c.Unmount()
}

func TestRealClock_Expires(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := &fakePlatform{}
	done := make(chan State, 2)
	c := New(police, models.LangEnglish, p.caps(), WithLogger(quiet), WithConfirmWindow(20*time.Millisecond))
	defer c.Unmount()
	c.OnChange(func(s State) { done <- s })

	c.Copy(context.Background())
	if s := <-done; s != Confirming {
		t.Fatalf("first change = %v", s)
	}
	select {
	case s := <-done:
		if s != Idle {
			t.Errorf("second change = %v, want idle", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}
