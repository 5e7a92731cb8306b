package multi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

// mockOutput records calls for test assertions.
type mockOutput struct {
	events []model.Event
	closed bool
	err    error // if set, Write and Close return this error
}

func (m *mockOutput) Write(_ context.Context, event model.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func testEvent(name string) model.Event {
	return model.Event{Name: name, DistinctID: "9098", Timestamp: time.Now()}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b, c := &mockOutput{}, &mockOutput{}, &mockOutput{}
	m := New(Sink{"a", a}, Sink{"b", b}, Sink{"c", c})

	if err := m.Write(context.Background(), testEvent("Pump")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, out := range []*mockOutput{a, b, c} {
		if len(out.events) != 1 || out.events[0].Name != "Pump" {
			t.Errorf("output %d: got %v", i, out.events)
		}
	}
	if got := strings.Join(m.Names(), ","); got != "a,b,c" {
		t.Errorf("Names = %s", got)
	}
}

func TestFailureStopsLaterSinks(t *testing.T) {
	failing := &mockOutput{err: errs.Sink(503, nil)}
	later := &mockOutput{}
	m := New(Sink{"posthog", failing}, Sink{"ledger", later})

	err := m.Write(context.Background(), testEvent("Diaper"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "posthog: ") {
		t.Errorf("error should name the sink, got %q", err)
	}
	if !errs.Is(err, errs.CategorySink) {
		t.Errorf("sink category lost: %v", err)
	}
	if len(later.events) != 0 {
		t.Fatalf("ledger recorded %d events the posthog sink rejected", len(later.events))
	}
	if len(failing.events) != 1 {
		t.Fatalf("failing output got %d events, want 1", len(failing.events))
	}
}

func TestEarlierSinksKeepDeliveredEvent(t *testing.T) {
	first := &mockOutput{}
	failing := &mockOutput{err: errors.New("disk full")}
	m := New(Sink{"stdout", first}, Sink{"file", failing})

	if err := m.Write(context.Background(), testEvent("Pump")); err == nil || !strings.HasPrefix(err.Error(), "file: ") {
		t.Fatalf("expected file error, got %v", err)
	}
	if len(first.events) != 1 {
		t.Fatalf("stdout got %d events, want 1", len(first.events))
	}
}

func TestCloseCollectsErrors(t *testing.T) {
	a := &mockOutput{err: errors.New("err-a")}
	b := &mockOutput{err: errors.New("err-b")}
	m := New(Sink{"a", a}, Sink{"b", b})

	err := m.Close()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !a.closed || !b.closed {
		t.Error("Close should be called on all outputs even when errors occur")
	}
}

func TestSingleOutputIdentity(t *testing.T) {
	inner := &mockOutput{}
	m := New(Sink{"stdout", inner})

	if err := m.Write(context.Background(), testEvent("Sleep")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.events) != 1 || !inner.closed {
		t.Error("single-sink Multi did not behave identically to wrapped output")
	}
}
