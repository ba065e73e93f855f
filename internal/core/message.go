package core

import (
	"fmt"
	"time"
)

// lineTimeLayout is the second-precision local timestamp embedded in every
// delivered line. Clients parse it, so it never changes.
const lineTimeLayout = "2006-01-02 15:04:05"

// Broadcast is one formatted chat line as relayed through the Hub. The
// message id is the storage-assigned id of the persisted message; it lets a
// freshly joined connection drop broadcasts it already received via history
// replay.
type Broadcast struct {
	MessageID int64
	Line      string
}

// FormatLine renders a chat line exactly as clients receive it, both during
// history replay and live delivery.
func FormatLine(sender, content string, ts time.Time) string {
	return fmt.Sprintf("%s: %s      [%s]", sender, content, ts.Local().Format(lineTimeLayout))
}
