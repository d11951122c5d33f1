package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/session"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

func (e *Engine) onDeveloperMessage(ctx context.Context, _ *session.Session, ev Event) error {
	if blank(ev.Text) {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEmptyInput + "\n\n" + msgWriteDeveloper, Menu: cancelMenu()})
		return nil
	}

	reply := msgDeveloperSent
	if err := e.forward(ctx, ev); err != nil {
		logger.Warn("Failed to forward message to developer", "user", ev.UserID, "error", err)
		reply = msgDeveloperFail
	}
	return e.abort(ctx, ev.UserID, reply)
}

func (e *Engine) forward(ctx context.Context, ev Event) error {
	if e.cfg.DevID == 0 {
		return fmt.Errorf("developer id is not configured")
	}
	from := "@" + ev.Username
	if ev.Username == "" {
		from = "a user"
	}
	text := fmt.Sprintf(msgFromUser, from, ev.UserID, strings.TrimSpace(ev.Text))
	pctx, cancel := withTimeout(ctx, e.cfg.PromptTimeout)
	defer cancel()
	_, err := e.Transport.SendPrompt(pctx, e.cfg.DevID, chat.Text(text))
	return err
}
