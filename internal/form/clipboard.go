package form

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
)

// Clipboard receives copied replies.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Copy puts the last generated reply on the clipboard.
func (c *Controller) Copy(_ context.Context) error {
	text := c.LastReply()
	err := errors.New("no reply to copy")
	if text != "" && c.clipboard != nil {
		err = c.clipboard.WriteAll(text)
	}
	if err != nil {
		c.logger.Debug("copy failed", "err", err)
		c.surface.SetStatus(StatusCopyFailed)
		return err
	}
	c.surface.SetStatus(StatusCopied)
	return nil
}
