package notify

import (
	"context"
	"fmt"
	"strings"

	"sourcecheck/internal/probe"
	"sourcecheck/internal/scan"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to several notifiers, returning the first error.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// maxDetailLines caps the message body so webhook payloads stay readable on
// very large catalogs.
const maxDetailLines = 40

// ReportMessage renders a scan report into a notification. The body lists
// only dead sources, grouped under their owners.
func ReportMessage(rep *scan.Report) (title, text string) {
	sum := rep.Summary()
	title = fmt.Sprintf("Source scan: %d dead of %d", sum.Dead(), sum.Total)

	var b strings.Builder
	lines := 0
	for _, owner := range rep.Owners {
		wroteOwner := false
		for _, out := range owner.Outcomes {
			if out.Status == probe.StatusReachable {
				continue
			}
			if lines >= maxDetailLines {
				fmt.Fprintf(&b, "… and %d more\n", sum.Dead()-lines)
				return title, b.String()
			}
			if !wroteOwner {
				fmt.Fprintf(&b, "%s:\n", owner.OwnerID)
				wroteOwner = true
			}
			fmt.Fprintf(&b, "  %s — %s", out.Location, out.Status)
			if out.Detail != "" {
				fmt.Fprintf(&b, " (%s)", out.Detail)
			}
			b.WriteByte('\n')
			lines++
		}
	}
	return title, b.String()
}
