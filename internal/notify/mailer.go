// Package notify delivers the onboarding completion report.
//
// Delivery is fire-and-forget from the caller's perspective: the completion
// guard hands the assembled report to a Mailer on a background goroutine and
// only logs failures. Errors here must never surface to the request that
// triggered the send.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// QA is one question/answer pair in the completion report, in the order the
// user answered.
type QA struct {
	Question string
	Answer   string
}

// Mailer sends the completion report. Implementations must be safe for
// concurrent use.
type Mailer interface {
	// SendCompletionReport emails the grouped onboarding summary to the
	// recipient. answers maps symptom display names to ordered Q/A pairs.
	SendCompletionReport(ctx context.Context, email, name, disease string, answers map[string][]QA) error
}

// SESMailer sends completion reports through AWS SES.
type SESMailer struct {
	client *ses.Client
	source string
	window time.Duration
}

// NewSESMailer builds an SES-backed mailer using the default AWS credential
// chain for the given region. source is the verified sender address; window is
// the configured editing window quoted in the report footer.
func NewSESMailer(ctx context.Context, region, source string, window time.Duration) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), source: source, window: window}, nil
}

// SendCompletionReport implements Mailer via a single SES SendEmail call.
func (m *SESMailer) SendCompletionReport(ctx context.Context, email, name, disease string, answers map[string][]QA) error {
	subject := fmt.Sprintf("%s screening complete", disease)
	body := RenderReport(name, disease, answers, m.window)

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.source),
	}
	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

// NopMailer discards reports. Used when notifications are disabled by config
// and in tests.
type NopMailer struct{}

// SendCompletionReport implements Mailer as a no-op.
func (NopMailer) SendCompletionReport(context.Context, string, string, string, map[string][]QA) error {
	return nil
}

// RenderReport builds the plaintext completion report: a greeting, then each
// symptom group (title-cased, sorted for a stable layout) with its question
// and answer lines. window is the editing window quoted in the footer.
func RenderReport(name, disease string, answers map[string][]QA, window time.Duration) string {
	titleCaser := cases.Title(language.English)

	groups := make([]string, 0, len(answers))
	for g := range answers {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "You have completed the %s onboarding questionnaire. ", disease)
	b.WriteString("Here is a summary of everything you submitted:\n")

	for _, g := range groups {
		fmt.Fprintf(&b, "\n%s\n", titleCaser.String(g))
		for _, qa := range answers[g] {
			fmt.Fprintf(&b, "  Q: %s\n  A: %s\n", qa.Question, qa.Answer)
		}
	}

	fmt.Fprintf(&b, "\nYour answers stay editable for the next %s, after which they are submitted automatically.\n", formatWindow(window))
	return b.String()
}

// formatWindow renders the editing window in whole days when it divides
// evenly, falling back to hours for shorter or uneven windows.
func formatWindow(window time.Duration) string {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	if window%(24*time.Hour) == 0 {
		days := int(window / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return fmt.Sprintf("%d hours", int(window/time.Hour))
}
