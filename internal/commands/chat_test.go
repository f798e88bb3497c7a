package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diogo/ssechat/internal/chat"
	"github.com/diogo/ssechat/internal/config"
	"github.com/diogo/ssechat/internal/models"
	"github.com/diogo/ssechat/internal/render"
	"github.com/diogo/ssechat/internal/tui"
)

// fakeTUI records what the chat command hands to the screen
type fakeTUI struct {
	called bool
	ctrl   tui.ChatController
	events <-chan chat.Event
	opts   tui.Options
	run    func(ctx context.Context, ctrl tui.ChatController) error
}

func (f *fakeTUI) RunChat(ctx context.Context, ctrl tui.ChatController, events <-chan chat.Event, opts tui.Options) error {
	f.called = true
	f.ctrl = ctrl
	f.events = events
	f.opts = opts
	if f.run != nil {
		return f.run(ctx, ctrl)
	}
	return nil
}

func TestChatCommand_Wiring(t *testing.T) {
	streamer := &fakeStreamer{}
	env := newTestEnv(t, streamer)

	cfg := config.DefaultConfig()
	cfg.Endpoint = "https://saved.test/stream"
	cfg.Greeting = "yo"
	cfg.TUITheme = "dracula"
	cfg.Markdown.Style = ""
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	fake := &fakeTUI{}
	env.deps.TUI = fake

	if err := env.execute("chat"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !fake.called {
		t.Fatal("TUI was not started")
	}
	if fake.events == nil {
		t.Error("TUI should receive the event channel")
	}
	if fake.opts.Theme.Name != "dracula" {
		t.Errorf("Theme = %q", fake.opts.Theme.Name)
	}
	if fake.opts.Markdown.Style != render.DraculaTheme.Markdown {
		t.Errorf("Markdown style = %q, want the theme's", fake.opts.Markdown.Style)
	}
	// SSECHAT_ENDPOINT wins over the saved endpoint
	if fake.opts.Endpoint != testEndpoint {
		t.Errorf("Endpoint = %q", fake.opts.Endpoint)
	}

	msgs := fake.ctrl.Conversation().Messages()
	if len(msgs) != 1 || msgs[0].Content != "yo" || msgs[0].Role != models.RoleAssistant {
		t.Errorf("conversation = %+v", msgs)
	}
	if !streamer.isClosed() {
		t.Error("streamer should be closed when the TUI exits")
	}
}

func TestChatCommand_ControllerFeedsEvents(t *testing.T) {
	streamer := &fakeStreamer{messages: []models.Message{models.NewAssistantMessage("hi back")}}
	env := newTestEnv(t, streamer)

	fake := &fakeTUI{}
	fake.run = func(ctx context.Context, ctrl tui.ChatController) error {
		turn, err := ctrl.Submit(ctx, "hello")
		if err != nil {
			return err
		}
		if outcome, err := turn.Wait(); outcome != chat.OutcomeCompleted {
			return errors.Join(errors.New("turn did not complete"), err)
		}
		return nil
	}
	env.deps.TUI = fake

	if err := env.execute("chat"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var kinds []chat.EventKind
	timeout := time.After(2 * time.Second)
	for len(kinds) < 4 {
		select {
		case ev := <-fake.events:
			kinds = append(kinds, ev.Kind)
		case <-timeout:
			t.Fatalf("got events %v", kinds)
		}
	}

	want := []chat.EventKind{chat.EventMessage, chat.EventTurnStarted, chat.EventMessage, chat.EventTurnEnded}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestChatCommand_ResetOnStop(t *testing.T) {
	env := newTestEnv(t, &fakeStreamer{block: true})

	cfg := config.DefaultConfig()
	cfg.ResetOnStop = true
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	var lenAfterStop int
	fake := &fakeTUI{}
	fake.run = func(ctx context.Context, ctrl tui.ChatController) error {
		if _, err := ctrl.Submit(ctx, "hello"); err != nil {
			return err
		}
		ctrl.Stop()
		lenAfterStop = ctrl.Conversation().Len()
		return nil
	}
	env.deps.TUI = fake

	if err := env.execute("chat"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if lenAfterStop != 1 {
		t.Errorf("Len after stop = %d, want greeting only", lenAfterStop)
	}
}

func TestChatCommand_TUIErrorPropagates(t *testing.T) {
	env := newTestEnv(t, &fakeStreamer{})
	fake := &fakeTUI{run: func(context.Context, tui.ChatController) error {
		return errors.New("no tty")
	}}
	env.deps.TUI = fake

	err := env.execute("chat")
	if err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Errorf("error = %v", err)
	}
}

func TestChatCommand_RejectsArgs(t *testing.T) {
	env := newTestEnv(t, &fakeStreamer{})
	if err := env.execute("chat", "extra"); err == nil {
		t.Error("chat should not accept arguments")
	}
}
