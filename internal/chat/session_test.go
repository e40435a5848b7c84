package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"jengabiashara/internal/domain"
)

type fakeStreamer struct {
	chunks  []string
	err     error
	lastMsg string
	block   chan struct{}
	started chan struct{}
}

func (f *fakeStreamer) StreamMessage(ctx context.Context, message string, onDelta func(string)) error {
	f.lastMsg = message
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	for _, c := range f.chunks {
		onDelta(c)
	}
	return f.err
}

func TestSessionOpensWithGreeting(t *testing.T) {
	s := NewSession(&fakeStreamer{}, zerolog.Nop())
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Sender != RoleAI || msgs[0].Text != Greeting {
		t.Fatalf("Messages() = %+v, want only the greeting", msgs)
	}
}

func TestSendIgnoresWhitespaceOnlyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		s := NewSession(&fakeStreamer{chunks: []string{"never"}}, zerolog.Nop())
		if err := s.Send(context.Background(), input, nil); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Send(%q) = %v, want ErrEmptyMessage", input, err)
		}
		if got := len(s.Messages()); got != 1 {
			t.Fatalf("Send(%q) grew the transcript to %d entries", input, got)
		}
	}
}

func TestSendAccumulatesStreamedReply(t *testing.T) {
	st := &fakeStreamer{chunks: []string{"Start ", "with a ", "loyalty card."}}
	s := NewSession(st, zerolog.Nop())

	var deltas []string
	if err := s.Send(context.Background(), "How do I keep customers?", func(d string) {
		deltas = append(deltas, d)
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if st.lastMsg != "How do I keep customers?" {
		t.Fatalf("streamed message = %q, want the user input verbatim", st.lastMsg)
	}
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("transcript has %d entries, want greeting + user + reply", len(msgs))
	}
	if msgs[1].Sender != RoleUser || msgs[1].Text != "How do I keep customers?" {
		t.Fatalf("user entry = %+v", msgs[1])
	}
	if msgs[2].Sender != RoleAI || msgs[2].Text != "Start with a loyalty card." {
		t.Fatalf("reply entry = %+v, want accumulated chunks", msgs[2])
	}
	if strings.Join(deltas, "") != "Start with a loyalty card." {
		t.Fatalf("forwarded deltas = %q", strings.Join(deltas, ""))
	}
}

func TestSendSkipsReplyEntryUntilContentArrives(t *testing.T) {
	st := &fakeStreamer{chunks: []string{"", "", "Here's my advice."}}
	s := NewSession(st, zerolog.Nop())

	if err := s.Send(context.Background(), "hello", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("transcript has %d entries, want 3", len(msgs))
	}
	if msgs[2].Text != "Here's my advice." {
		t.Fatalf("reply = %q", msgs[2].Text)
	}
}

func TestSendAppendsApologyOnStreamFailure(t *testing.T) {
	st := &fakeStreamer{chunks: []string{"partial "}, err: errors.New("connection reset")}
	s := NewSession(st, zerolog.Nop())

	err := s.Send(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("Send() = %v, want ErrProviderFailure", err)
	}
	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	if last.Sender != RoleAI || last.Text != ConnectFailureReply {
		t.Fatalf("last entry = %+v, want the apology", last)
	}
}

func TestSendRejectsConcurrentExchange(t *testing.T) {
	st := &fakeStreamer{
		chunks:  []string{"ok"},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := NewSession(st, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	errc := make(chan error, 1)
	go func() {
		defer wg.Done()
		errc <- s.Send(context.Background(), "first", nil)
	}()
	<-st.started

	if err := s.Send(context.Background(), "second", nil); !errors.Is(err, domain.ErrDuplicateOperation) {
		t.Fatalf("concurrent Send() = %v, want ErrDuplicateOperation", err)
	}

	close(st.block)
	wg.Wait()
	if err := <-errc; err != nil {
		t.Fatalf("first Send: %v", err)
	}
}
