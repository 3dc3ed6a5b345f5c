package paste

import (
	"context"

	"github.com/atotto/clipboard"
)

// ClipboardPaster is the default paste collaborator: it places the final
// text on the system clipboard. Keystroke simulation is left to the host
// platform integration.
type ClipboardPaster struct{}

func NewClipboardPaster() *ClipboardPaster {
	return &ClipboardPaster{}
}

func (p *ClipboardPaster) Paste(_ context.Context, text string) error {
	return clipboard.WriteAll(text)
}
