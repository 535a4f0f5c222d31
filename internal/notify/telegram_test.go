package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/store"
)

type stubSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
	err  error
	done chan struct{}
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	close(s.done)
	return tgbotapi.Message{}, s.err
}

func TestBookingConfirmedSendsAlert(t *testing.T) {
	sender := &stubSender{done: make(chan struct{})}
	logger := zerolog.Nop()
	n := NewTelegramNotifierWithSender(sender, 42, &logger)

	n.BookingConfirmed(context.Background(), store.BookingPayload{
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Phone:       "555-0101",
		Date:        "2026-06-10",
		Time:        "11:00 AM",
		Description: "Budget: 5k+",
	})

	select {
	case <-sender.done:
	case <-time.After(time.Second):
		t.Fatal("alert never sent")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", sender.sent[0])
	}
	if msg.ChatID != 42 {
		t.Errorf("chat id = %d", msg.ChatID)
	}
	for _, want := range []string{"Ada Lovelace", "2026-06-10 at 11:00 AM", "Budget: 5k+"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("alert text missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestBookingConfirmedSwallowsFailure(t *testing.T) {
	sender := &stubSender{done: make(chan struct{}), err: errors.New("telegram down")}
	logger := zerolog.Nop()
	n := NewTelegramNotifierWithSender(sender, 42, &logger)

	// Must not panic or block the caller.
	n.BookingConfirmed(context.Background(), store.BookingPayload{Name: "Ada Lovelace"})

	select {
	case <-sender.done:
	case <-time.After(time.Second):
		t.Fatal("alert never attempted")
	}
}
