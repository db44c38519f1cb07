package port

import (
	"context"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// ReviewNotification carries everything the caregiver email needs for a
// scan waiting on manual review, including the one-click assignment link.
type ReviewNotification struct {
	Doc         *domain.ScannedDocument
	StudentName string
	Suggestions []SuggestedAssignment
	AssignURL   string
}

// SuggestedAssignment is a ranked match candidate rendered into the email.
type SuggestedAssignment struct {
	Name       string
	CourseName string
	Confidence float64
}

// DiscrepancyAlert carries the data for a score-mismatch email.
type DiscrepancyAlert struct {
	Doc            *domain.ScannedDocument
	StudentName    string
	AssignmentName string
}

// EmailSender defines the contract for caregiver notifications.
type EmailSender interface {
	SendReviewNotification(ctx context.Context, to string, n *ReviewNotification) error
	SendDiscrepancyAlert(ctx context.Context, to string, a *DiscrepancyAlert) error
}
