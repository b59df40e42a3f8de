package pace

import (
	"context"
	"testing"
	"time"

	"github.com/matsen/jrec/internal/logger"
)

type recorder struct {
	slept []time.Duration
}

func (r *recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.slept = append(r.slept, d)
	return ctx.Err()
}

func TestPickWithinRange(t *testing.T) {
	p := NewPacer(WithSeed(42))

	tests := []struct {
		name string
		r    Range
	}{
		{"seconds", Seconds(5, 15)},
		{"point", Seconds(3, 3)},
		{"zero", Range{}},
		{"sub-second", Range{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				d := p.Pick(tt.r)
				if d < tt.r.Min || d > tt.r.Max {
					t.Fatalf("Pick(%s) = %s, out of range", tt.r, d)
				}
			}
		})
	}
}

func TestWaitUsesSleeper(t *testing.T) {
	rec := &recorder{}
	p := NewPacer(WithSeed(1), WithSleeper(rec), WithMaxRate(0))

	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background(), Seconds(1, 3)); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	if len(rec.slept) != 3 {
		t.Fatalf("slept %d times, want 3", len(rec.slept))
	}
	for _, d := range rec.slept {
		if d < time.Second || d > 3*time.Second {
			t.Errorf("slept %s, want within 1s-3s", d)
		}
	}
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPacer()
	if err := p.Wait(ctx, Seconds(5, 15)); err == nil {
		t.Fatal("Wait() on cancelled context should fail")
	}
}

func TestTimerSleeperInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := timerSleeper{}.Sleep(ctx, time.Hour)
	if err == nil {
		t.Fatal("Sleep() should return the context error")
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep() did not return promptly")
	}
}

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		r       Range
		wantErr bool
	}{
		{Seconds(1, 3), false},
		{Seconds(0, 0), false},
		{Seconds(3, 1), true},
		{Range{Min: -time.Second, Max: time.Second}, true},
	}
	for _, tt := range tests {
		if err := tt.r.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%s) error = %v, wantErr %v", tt.r, err, tt.wantErr)
		}
	}
}

func TestDetector(t *testing.T) {
	rec := &recorder{}
	p := NewPacer(WithSeed(7), WithSleeper(rec))
	d := NewDetector(DefaultBlockToken, Seconds(60, 120), p, logger.NewNop())

	tests := []struct {
		text string
		want bool
	}{
		{"<html>results</html>", false},
		{"<div id='gs_captcha_ccl'>Please show you're not a robot</div>", true},
		{"Solve this CAPTCHA to continue", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := d.Check(context.Background(), tt.text); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	if len(rec.slept) != 2 {
		t.Fatalf("cooled down %d times, want 2", len(rec.slept))
	}
	for _, s := range rec.slept {
		if s < 60*time.Second || s > 120*time.Second {
			t.Errorf("cooldown %s outside 60s-120s", s)
		}
	}
}

func TestDetectorDisabled(t *testing.T) {
	d := NewDetector("", Seconds(60, 120), NewPacer(), logger.NewNop())
	if d.Blocked("captcha") {
		t.Error("empty token should never match")
	}
}
