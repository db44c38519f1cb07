package noop

import (
	"context"
	"log"

	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs notifications to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReviewNotification(_ context.Context, to string, n *port.ReviewNotification) error {
	log.Printf("[NOOP EMAIL] Review needed for scan %s (%s), %d suggestions, assign link: %s",
		n.Doc.ID, to, len(n.Suggestions), n.AssignURL)
	return nil
}

func (s *noopSender) SendDiscrepancyAlert(_ context.Context, to string, a *port.DiscrepancyAlert) error {
	log.Printf("[NOOP EMAIL] Discrepancy on scan %s (%s): assignment %q", a.Doc.ID, to, a.AssignmentName)
	return nil
}
