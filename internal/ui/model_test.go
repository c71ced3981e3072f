package ui_test

import (
	"strings"
	"testing"

	"voicebot/internal/domain"
	"voicebot/internal/ui"
)

func TestRenderMessages_AnnotatesIntent(t *testing.T) {
	messages := []domain.Message{
		domain.NewMessage(domain.SenderUser, "What are your business hours?"),
	}
	bot := domain.NewMessage(domain.SenderBot, "We are open 9 to 5.")
	bot.Intent = "get_hours"
	bot.ActionTaken = "lookup"
	messages = append(messages, bot)

	out := ui.RenderMessages(messages, 80)

	if !strings.Contains(out, "What are your business hours?") {
		t.Error("user text missing")
	}
	if !strings.Contains(out, "We are open 9 to 5.") {
		t.Error("bot text missing")
	}
	if !strings.Contains(out, "Intent: get_hours | lookup") {
		t.Errorf("annotation missing:\n%s", out)
	}
}

func TestRenderMessages_NoAnnotationWithoutIntent(t *testing.T) {
	messages := []domain.Message{
		domain.NewMessage(domain.SenderBot, "Sorry, I couldn't reach the server."),
	}

	out := ui.RenderMessages(messages, 80)
	if strings.Contains(out, "Intent:") {
		t.Errorf("unexpected annotation:\n%s", out)
	}
}

func TestRenderMessages_Empty(t *testing.T) {
	out := ui.RenderMessages(nil, 80)
	if !strings.Contains(out, "Press space") {
		t.Errorf("empty prompt missing:\n%s", out)
	}
}
