package telegram

import (
	"context"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/pavelc4/aether-media-bot/config"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

type Client struct {
	client *telegram.Client
	api    *tg.Client
	me     *tg.User
}

func NewClient(cfg *config.Config, dispatcher tg.UpdateDispatcher, log *zap.Logger) *Client {
	sessionPath := filepath.Join(cfg.SessionDir, "session.json")

	opts := telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionPath},
		UpdateHandler:  dispatcher,
		Logger:         log,
	}

	client := telegram.NewClient(cfg.AppID, cfg.AppHash, opts)

	return &Client{
		client: client,
		api:    client.API(),
	}
}

// Start logs in as the bot and blocks until ctx is done. ready runs once
// the session is authorised.
func (c *Client) Start(ctx context.Context, botToken string, ready func(ctx context.Context) error) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return errors.Wrap(err, "auth status")
		}

		if !status.Authorized {
			if _, err := c.client.Auth().Bot(ctx, botToken); err != nil {
				return errors.Wrap(err, "bot login")
			}
		}

		me, err := c.client.Self(ctx)
		if err != nil {
			return errors.Wrap(err, "get self")
		}
		c.me = me

		logger.Info("Telegram client connected", "username", me.Username, "id", me.ID)

		if ready != nil {
			if err := ready(ctx); err != nil {
				return err
			}
		}

		<-ctx.Done()
		return nil
	})
}

func (c *Client) API() *tg.Client {
	return c.api
}

func (c *Client) Me() *tg.User {
	return c.me
}
