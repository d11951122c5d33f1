package handler

import (
	"context"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
)

const helpText = `Aether Media Bot

I download videos and music from YouTube, VK, Rutube and TikTok and send them straight to this chat.

Commands:
• /start - Open the main menu
• /menu - Back to the main menu
• /cancel - Stop the current action
• /help - Show this message
• /stats - Bot statistics (developer only)

Tips:
• Just paste a link to get the download options
• "Send multiple links" accepts a comma separated list
• VK music search pages through up to 50 tracks
• Files up to 2 GB are supported`

type BasicHandler struct {
	api *tg.Client
}

func NewBasicHandler(api *tg.Client) *BasicHandler {
	return &BasicHandler{api: api}
}

func (h *BasicHandler) HandleHelp(ctx context.Context, e tg.Entities, msg *tg.Message) error {
	peer, err := resolvePeer(msg.PeerID, e)
	if err != nil {
		return err
	}

	markup := &tg.ReplyInlineMarkup{
		Rows: []tg.KeyboardButtonRow{
			{
				Buttons: []tg.KeyboardButtonClass{
					&tg.KeyboardButtonURL{
						Text: "Source",
						URL:  "https://github.com/pavelc4/aether-media-bot",
					},
				},
			},
		},
	}

	_, err = message.NewSender(h.api).To(peer).Markup(markup).Text(ctx, helpText)
	return err
}
