package webstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseExpiration(t *testing.T) {
	now := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		expr string
		want time.Time
	}{
		{"160s", now.Add(160 * time.Second)},
		{"15m", now.Add(15 * time.Minute)},
		{"20h", now.Add(20 * time.Hour)},
		{"1d", time.Date(2024, 2, 1, 23, 0, 0, 0, time.UTC)},
		{"30d", time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)},
		{"0s", now},
		{"-5m", now.Add(-5 * time.Minute)},
		{"2562047h", now.Add(2562047 * time.Hour)},
		{"-9223372036s", now.Add(-9223372036 * time.Second)},
		{"106751d", now.AddDate(0, 0, 106751)},
	}

	for _, tt := range tests {
		got, err := ParseExpiration(tt.expr, now)
		if err != nil {
			t.Errorf("ParseExpiration(%q) error: %v", tt.expr, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseExpiration(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestParseExpiration_Invalid(t *testing.T) {
	for _, expr := range []string{"", "s", "5", "10xyz", "10ddss", "h5", "1.5h", "1d2h", " 5s", "5S",
		"3000000h", "-3000000h", "10000000000s", "200000000m", "106752d", "99999999999999999999s"} {
		if _, err := ParseExpiration(expr, time.Now()); !errors.Is(err, ErrInvalidExpiration) {
			t.Errorf("ParseExpiration(%q): expected ErrInvalidExpiration, got %v", expr, err)
		}
	}
}

func TestExpiration_Resolve(t *testing.T) {
	now := time.Now()
	at := now.Add(time.Hour)

	if got, err := At(at).resolve(now); err != nil || !got.Equal(at) {
		t.Errorf("At.resolve = %v, %v", got, err)
	}
	if _, err := At(time.Time{}).resolve(now); !errors.Is(err, ErrInvalidExpiration) {
		t.Errorf("zero instant: expected ErrInvalidExpiration, got %v", err)
	}
	if got, err := After("").resolve(now); err != nil || !got.IsZero() {
		t.Errorf("empty expression = %v, %v; want zero, nil", got, err)
	}
	if got, err := (Expiration{}).resolve(now); err != nil || !got.IsZero() {
		t.Errorf("zero Expiration = %v, %v; want zero, nil", got, err)
	}
}

func TestStore_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(WithClock(clock.Now))
	ctx := context.Background()

	var events []any
	s.On("timed_value", func(v any) { events = append(events, v) })

	report, err := s.Set(ctx, "timed_value", "A temporary string", ExpiresIn("2s"))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !report.ExpiresAt.Equal(clock.now.Add(2 * time.Second)) {
		t.Errorf("ExpiresAt = %v", report.ExpiresAt)
	}

	if got, _ := s.Get(ctx, "timed_value"); got != "A temporary string" {
		t.Errorf("Get at t+0 = %v", got)
	}

	clock.Advance(2 * time.Second)
	if got, _ := s.Get(ctx, "timed_value"); got != "A temporary string" {
		t.Errorf("Get exactly at expiry = %v, want value", got)
	}

	clock.Advance(time.Millisecond)
	if got, _ := s.Get(ctx, "timed_value"); got != nil {
		t.Errorf("Get after expiry = %v, want nil", got)
	}
	if primaryOf(t, s).Len() != 0 {
		t.Error("expired Get should remove the entry")
	}
	if len(events) != 2 || events[1] != nil {
		t.Errorf("events = %v, want [value nil]", events)
	}
}

func TestStore_HugeExpirationStoredWithoutExpiry(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(WithClock(clock.Now))
	ctx := context.Background()

	for _, expr := range []string{"3000000h", "10000000000s", "200000000m"} {
		report, err := s.Set(ctx, "k", "v", ExpiresIn(expr))
		if err != nil {
			t.Fatalf("Set(%s) failed: %v", expr, err)
		}
		if !report.Degraded() || !errors.Is(report.Warnings[0], ErrInvalidExpiration) {
			t.Errorf("Set(%s) Warnings = %v", expr, report.Warnings)
		}
		if !report.ExpiresAt.IsZero() {
			t.Errorf("Set(%s) ExpiresAt = %v, want zero", expr, report.ExpiresAt)
		}
		if got, _ := s.Get(ctx, "k"); got != "v" {
			t.Errorf("Get after Set(%s) = %v, want v", expr, got)
		}
	}
}

func TestStore_LazyExpiry(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(WithClock(clock.Now))
	ctx := context.Background()

	_, _ = s.Set(ctx, "one", 1, ExpiresIn("3s"))
	_, _ = s.Set(ctx, "two", 2, ExpiresIn("6s"))

	clock.Advance(4 * time.Second)
	if keys, _ := s.Keys(ctx); len(keys) != 2 {
		t.Errorf("untouched expired record should still be stored, keys=%v", keys)
	}
	if got, _ := s.Get(ctx, "one"); got != nil {
		t.Errorf("one = %v, want nil", got)
	}
	if got, _ := s.Get(ctx, "two"); got != 2.0 {
		t.Errorf("two = %v, want 2", got)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 1 {
		t.Errorf("keys = %v, want [two]", keys)
	}
}

func TestStore_ExpiresAt(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(WithClock(clock.Now))
	ctx := context.Background()

	deadline := clock.now.Add(90 * time.Minute)
	report, _ := s.Set(ctx, "k", "v", ExpiresAt(deadline))
	if !report.ExpiresAt.Equal(deadline) {
		t.Errorf("ExpiresAt = %v, want %v", report.ExpiresAt, deadline)
	}

	clock.Advance(91 * time.Minute)
	if got, _ := s.Get(ctx, "k"); got != nil {
		t.Errorf("Get after deadline = %v, want nil", got)
	}

	report, err := s.Set(ctx, "k", "v", ExpiresAt(time.Time{}))
	if err != nil || !report.Degraded() {
		t.Errorf("zero instant should degrade: %v, %v", report, err)
	}
	clock.Advance(1000 * time.Hour)
	if got, _ := s.Get(ctx, "k"); got != "v" {
		t.Errorf("degraded record should never expire, got %v", got)
	}
}

func TestStore_ExpiredCollections(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(WithClock(clock.Now))
	ctx := context.Background()

	_, _ = s.Set(ctx, "complexMapExpires", MapOf(map[string][]int{"key2": {5, 6, 7, 8}}), ExpiresIn("1s"))
	_, _ = s.Set(ctx, "complexSetExpires", SetOf("a", "b"), ExpiresIn("1s"))

	clock.Advance(2 * time.Second)
	for _, k := range []string{"complexMapExpires", "complexSetExpires"} {
		if got, _ := s.Get(ctx, k); got != nil {
			t.Errorf("Get(%s) = %v, want nil", k, got)
		}
	}
}

func TestStore_GetAndRemove_Expired(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(WithClock(clock.Now))
	ctx := context.Background()

	var events []any
	s.On("k", func(v any) { events = append(events, v) })
	_, _ = s.Set(ctx, "k", "v", ExpiresIn("1m"))

	clock.Advance(time.Hour)
	v, err := s.GetAndRemove(ctx, "k")
	if err != nil || v != nil {
		t.Errorf("GetAndRemove = %v, %v; want nil, nil", v, err)
	}
	if len(events) != 3 || events[1] != nil || events[2] != nil {
		t.Errorf("events = %v, want [v nil nil]", events)
	}
}
