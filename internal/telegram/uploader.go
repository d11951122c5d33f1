package telegram

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"

	"github.com/pavelc4/aether-media-bot/internal/chat"
)

// document builds the media payload for an uploaded artifact.
func document(file tg.InputFileClass, d chat.Delivery) *message.UploadedDocumentBuilder {
	name := filepath.Base(d.Path)
	doc := message.UploadedDocument(file, styling.Plain(d.Title)).
		MIME(mimeType(d)).
		Filename(name)

	if d.Kind == chat.MediaAudio {
		return doc.Attributes(&tg.DocumentAttributeAudio{Title: d.Title})
	}
	return doc.Attributes(&tg.DocumentAttributeVideo{SupportsStreaming: true})
}

func mimeType(d chat.Delivery) string {
	if t := mime.TypeByExtension(filepath.Ext(d.Path)); t != "" {
		return t
	}
	if d.Kind == chat.MediaAudio {
		return "audio/mpeg"
	}
	return "video/mp4"
}

func (t *Transport) upload(ctx context.Context, userID int64, path string) (tg.InputFileClass, error) {
	threads := t.uploadThreads
	if t.threads != nil {
		threads = t.threads(ctx)
	}
	up := uploader.NewUploader(t.api).
		WithPartSize(uploader.MaximumPartSize).
		WithThreads(threads).
		WithProgress(newUploadProgress(userID))
	file, err := up.FromPath(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "upload")
	}
	return file, nil
}
