package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendReviewNotification(ctx context.Context, to string, n *port.ReviewNotification) error {
	subject := fmt.Sprintf("Schoolwork scan needs review: %s", n.Doc.FileName)
	htmlBody := buildReviewHTML(n)
	textBody := buildReviewText(n)
	return s.send(ctx, to, subject, htmlBody, textBody)
}

func (s *sesSender) SendDiscrepancyAlert(ctx context.Context, to string, a *port.DiscrepancyAlert) error {
	subject := fmt.Sprintf("Score mismatch for %s: %s", a.StudentName, a.AssignmentName)
	htmlBody := buildDiscrepancyHTML(a)
	textBody := buildDiscrepancyText(a)
	return s.send(ctx, to, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewHTML(n *port.ReviewNotification) string {
	var suggestions strings.Builder
	for _, s := range n.Suggestions {
		fmt.Fprintf(&suggestions,
			`<li>%s (%s) &mdash; %.0f%% confidence</li>`,
			html.EscapeString(s.Name), html.EscapeString(s.CourseName), s.Confidence*100)
	}
	if suggestions.Len() == 0 {
		suggestions.WriteString("<li>No close matches found.</li>")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">A scan needs your review</h2>
  <p>A scanned paper for %s could not be matched confidently.</p>
  <ul style="color: #333;">
    <li>File: %s</li>
    <li>Detected title: %s</li>
    <li>Detected score: %s</li>
  </ul>
  <p>Closest assignments:</p>
  <ul style="color: #333;">%s</ul>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review and Assign</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Canvas Parent Scanner</p>
</body>
</html>`,
		html.EscapeString(n.StudentName),
		html.EscapeString(n.Doc.FileName),
		html.EscapeString(n.Doc.DetectedTitle),
		formatScore(n.Doc.DetectedScore, n.Doc.DetectedMaxScore),
		suggestions.String(),
		n.AssignURL,
	)
}

func buildReviewText(n *port.ReviewNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A scanned paper for %s could not be matched confidently.\n\n", n.StudentName)
	fmt.Fprintf(&b, "File: %s\nDetected title: %s\nDetected score: %s\n\n",
		n.Doc.FileName, n.Doc.DetectedTitle, formatScore(n.Doc.DetectedScore, n.Doc.DetectedMaxScore))
	b.WriteString("Closest assignments:\n")
	for _, s := range n.Suggestions {
		fmt.Fprintf(&b, "  - %s (%s), %.0f%% confidence\n", s.Name, s.CourseName, s.Confidence*100)
	}
	if len(n.Suggestions) == 0 {
		b.WriteString("  (no close matches found)\n")
	}
	fmt.Fprintf(&b, "\nReview and assign: %s\n", n.AssignURL)
	return b.String()
}

func buildDiscrepancyHTML(a *port.DiscrepancyAlert) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Paper score differs from the gradebook</h2>
  <p>The scanned paper for %s does not agree with the recorded grade.</p>
  <ul style="color: #333;">
    <li>Assignment: %s</li>
    <li>On the paper: %s</li>
    <li>In the gradebook: %s</li>
  </ul>
  <p>It may be worth checking with the teacher.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Canvas Parent Scanner</p>
</body>
</html>`,
		html.EscapeString(a.StudentName),
		html.EscapeString(a.AssignmentName),
		formatScore(a.Doc.DetectedScore, a.Doc.DetectedMaxScore),
		formatCanvasScore(a.Doc.CanvasScore),
	)
}

func buildDiscrepancyText(a *port.DiscrepancyAlert) string {
	return fmt.Sprintf(
		"The scanned paper for %s does not agree with the recorded grade.\n\nAssignment: %s\nOn the paper: %s\nIn the gradebook: %s\n\nIt may be worth checking with the teacher.\n",
		a.StudentName, a.AssignmentName,
		formatScore(a.Doc.DetectedScore, a.Doc.DetectedMaxScore),
		formatCanvasScore(a.Doc.CanvasScore),
	)
}

func formatScore(score, max *float64) string {
	switch {
	case score != nil && max != nil:
		return fmt.Sprintf("%g/%g", *score, *max)
	case score != nil:
		return fmt.Sprintf("%g", *score)
	default:
		return "not detected"
	}
}

func formatCanvasScore(score *float64) string {
	if score == nil {
		return "not graded"
	}
	return fmt.Sprintf("%g", *score)
}
