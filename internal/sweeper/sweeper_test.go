package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dwizi/friday/internal/store"
)

type fakeReminderStore struct {
	due     []store.DueReminder
	listErr error
	marked  []string
	markErr error
	pending map[string]bool
}

func (f *fakeReminderStore) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]store.DueReminder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeReminderStore) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	f.marked = append(f.marked, id)
	if f.pending != nil && !f.pending[id] {
		return false, nil
	}
	return true, nil
}

type fakeSender struct {
	sent    []string
	bodies  []string
	failFor map[string]error
}

func (f *fakeSender) SendMessage(ctx context.Context, to, body string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	f.bodies = append(f.bodies, body)
	return nil
}

func dueReminder(id, addr, content string) store.DueReminder {
	return store.DueReminder{
		Reminder:       store.Reminder{ID: id, Content: content, Status: store.ReminderStatusPending},
		ChannelAddress: addr,
	}
}

func TestSweepDeliversAndMarks(t *testing.T) {
	st := &fakeReminderStore{due: []store.DueReminder{
		dueReminder("rem-1", "whatsapp:+1", "stand-up"),
		dueReminder("rem-2", "whatsapp:+2", "call mum"),
	}}
	sender := &fakeSender{}
	sweeper := New(st, sender, "", 0, nil)

	sweeper.Sweep(context.Background())

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.sent))
	}
	if sender.bodies[0] != "⏰ Reminder: stand-up" {
		t.Errorf("body = %q", sender.bodies[0])
	}
	if len(st.marked) != 2 || st.marked[0] != "rem-1" || st.marked[1] != "rem-2" {
		t.Errorf("marked = %v", st.marked)
	}
}

func TestSweepFailedSendLeavesReminderPending(t *testing.T) {
	st := &fakeReminderStore{due: []store.DueReminder{
		dueReminder("rem-1", "whatsapp:+1", "first"),
		dueReminder("rem-2", "whatsapp:+2", "second"),
	}}
	sender := &fakeSender{failFor: map[string]error{"whatsapp:+1": errors.New("twilio down")}}
	sweeper := New(st, sender, "", 0, nil)

	sweeper.Sweep(context.Background())

	if len(st.marked) != 1 || st.marked[0] != "rem-2" {
		t.Errorf("marked = %v, want only rem-2", st.marked)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "whatsapp:+2" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestSweepListFailureIsQuiet(t *testing.T) {
	st := &fakeReminderStore{listErr: errors.New("db gone")}
	sender := &fakeSender{}
	sweeper := New(st, sender, "", 0, nil)

	sweeper.Sweep(context.Background())

	if len(sender.sent) != 0 {
		t.Errorf("sent = %v, want none", sender.sent)
	}
}

func TestSweepHonorsBatchLimit(t *testing.T) {
	st := &fakeReminderStore{due: []store.DueReminder{
		dueReminder("rem-1", "whatsapp:+1", "a"),
		dueReminder("rem-2", "whatsapp:+2", "b"),
		dueReminder("rem-3", "whatsapp:+3", "c"),
	}}
	sender := &fakeSender{}
	sweeper := New(st, sender, "", 2, nil)

	sweeper.Sweep(context.Background())

	if len(sender.sent) != 2 {
		t.Errorf("sent %d messages, want batch limit of 2", len(sender.sent))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	sweeper := New(&fakeReminderStore{}, &fakeSender{}, "@every 1h", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunRejectsBadCronSpec(t *testing.T) {
	sweeper := New(&fakeReminderStore{}, &fakeSender{}, "not a schedule", 0, nil)
	if err := sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
