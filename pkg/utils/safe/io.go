package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// Close closes c and only logs a failure. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close",
			"error", err.Error(),
			"closer", fmt.Sprintf("%T", c),
		)
	}
}

// Write writes data to w after the response status is committed, where a
// failure can no longer be reported to the client.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("failed to write response",
			"error", err.Error(),
			"written", n,
			"size", len(data),
		)
	}
}
