package engine

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/pavelc4/aether-media-bot/pkg/utils"
)

var (
	ErrSessionCorrupt = errors.New("session corrupted")
	ErrNoRenditions   = errors.New("no downloadable renditions")
)

// ClassificationMiss is a link that matches no known provider.
type ClassificationMiss struct {
	URL string
}

func (e *ClassificationMiss) Error() string {
	return fmt.Sprintf("unsupported link %q", e.URL)
}

// TooLargeError is returned instead of attempting delivery of an artifact
// over the upload ceiling.
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file size %d exceeds limit %d", e.Size, e.Limit)
}

// DeliveryError wraps a transport failure while sending a file.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "deliver: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// describe turns a collaborator failure into the message shown to the user.
func describe(err error) string {
	var (
		miss     *ClassificationMiss
		tooLarge *TooLargeError
		delivery *DeliveryError
	)
	switch {
	case errors.As(err, &miss):
		return msgUnsupportedLink
	case errors.As(err, &tooLarge):
		return fmt.Sprintf(msgTooLarge, utils.FormatFileSize(tooLarge.Size), utils.FormatFileSize(tooLarge.Limit))
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.As(err, &delivery):
		return msgDeliveryFailed
	case errors.Is(err, ErrNoRenditions):
		return msgNoStoryQualities
	}
	return msgExtraction
}

func outcome(err error) string {
	var (
		miss     *ClassificationMiss
		tooLarge *TooLargeError
		delivery *DeliveryError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &miss):
		return "unsupported"
	case errors.As(err, &tooLarge):
		return "too_large"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &delivery):
		return "delivery_error"
	}
	return "extraction_error"
}
