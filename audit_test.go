package authgate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestAuditLoginEvents(t *testing.T) {
	sink := NewChannelSink(16)

	cfg := engineTestConfig()
	cfg.Audit.Enabled = true

	_, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := WithClientIP(context.Background(), "192.0.2.7")
	ctx = WithUserAgent(ctx, "audit-test/1.0")

	if err := engine.Register(ctx, "mallory@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := engine.Login(ctx, "mallory@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}

	// Close drains the dispatcher before the channel is read.
	engine.Close()

	var events []AuditEvent
	for {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
			continue
		default:
		}
		break
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	reg, fail := events[0], events[1]
	if reg.EventType != auditEventRegisterSuccess || !reg.Success {
		t.Fatalf("unexpected first event: %+v", reg)
	}
	if fail.EventType != auditEventLoginFailure || fail.Success {
		t.Fatalf("unexpected second event: %+v", fail)
	}
	if fail.Username != "mallory@example.com" {
		t.Fatalf("unexpected username %q", fail.Username)
	}
	if fail.IP != "192.0.2.7" || fail.UserAgent != "audit-test/1.0" {
		t.Fatalf("context metadata not propagated: %+v", fail)
	}
	if reg.EventID == "" || reg.EventID == fail.EventID {
		t.Fatal("expected distinct non-empty event ids")
	}
	if reg.Timestamp.IsZero() {
		t.Fatal("expected event timestamp")
	}
}

func TestJSONWriterSinkWritesNDJSON(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), newAuditEvent("one"))
	sink.Emit(context.Background(), newAuditEvent("two"))

	scanner := bufio.NewScanner(&buf)
	var types []string
	for scanner.Scan() {
		var ev AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		types = append(types, ev.EventType)
	}
	if len(types) != 2 || types[0] != "one" || types[1] != "two" {
		t.Fatalf("unexpected event types %v", types)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}

	d := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), newAuditEvent("burst"))
	}

	close(block)
	d.Close()

	if d.Dropped() == 0 {
		t.Fatal("expected drops with a full buffer")
	}
}

type blockingSink struct {
	release chan struct{}
}

func (s blockingSink) Emit(context.Context, AuditEvent) {
	<-s.release
}

func TestDispatcherCloseDrains(t *testing.T) {
	sink := NewChannelSink(64)
	d := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 64,
		DropIfFull: false,
	}, sink)

	const n = 20
	for i := 0; i < n; i++ {
		d.Emit(context.Background(), newAuditEvent("drain"))
	}
	d.Close()

	got := 0
	timeout := time.After(time.Second)
	for got < n {
		select {
		case <-sink.Events():
			got++
		case <-timeout:
			t.Fatalf("only %d of %d events drained", got, n)
		}
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}
