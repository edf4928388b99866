package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMulti(t *testing.T) {
	var a, b []string
	m := NewMulti(
		Func(func(n Notice) { a = append(a, n.Message) }),
		nil,
	)
	m.Add(Func(func(n Notice) { b = append(b, n.Message) }))

	m.Announce(Info(MsgQuotesUpdated))

	if len(a) != 1 || a[0] != MsgQuotesUpdated {
		t.Errorf("first notifier got %v", a)
	}
	if len(b) != 1 || b[0] != MsgQuotesUpdated {
		t.Errorf("second notifier got %v", b)
	}
}

func TestNoticeConstructors(t *testing.T) {
	info := Info("hello")
	if info.Level != LevelInfo || info.TTL != DisplayTTL || info.At.IsZero() {
		t.Errorf("Info() = %+v", info)
	}

	fail := Failure("boom")
	if fail.Level != LevelError || fail.Message != "boom" {
		t.Errorf("Failure() = %+v", fail)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n := NewLogNotifier(logger)
	n.Announce(Info(MsgQuotesUpdated))
	n.Announce(Failure(MsgFetchFailed))

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "quotes updated") {
		t.Errorf("info notice not logged: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "could not fetch") {
		t.Errorf("failure notice not logged: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic.
	Discard.Announce(Info("ignored"))
}
