package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"marketplace-service/internal/logging"
)

const fallbackTitle = "your listing"

var emailTemplate = template.Must(template.New("email").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>You've received a new message!</h2>
  <p>A potential buyer is interested in your listing: <strong>{{.Title}}</strong>.</p>
  <hr>
  <p><strong>From:</strong> {{.BuyerEmail}}</p>
  <p><strong>Message:</strong></p>
  <blockquote style="border-left: 4px solid #ccc; padding-left: 1em; margin: 1em 0; color: #555;">{{.Message}}</blockquote>
  <hr>
  <p style="font-size: 0.8em; color: #777;">This is an automated notification from Marketplace.</p>
</div>`))

// TitleLookup resolves a listing title for the mail subject.
type TitleLookup interface {
	Title(ctx context.Context, listingID string) (string, error)
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails the seller about a new inquiry.
type EmailNotifier struct {
	From   string
	Sender Sender
	Titles TitleLookup
	Logger *logging.Logger
}

// NewSMTPNotifier sends through an SMTP relay such as Gmail.
func NewSMTPNotifier(host string, port int, username, password, from string, titles TitleLookup, logger *logging.Logger) *EmailNotifier {
	return &EmailNotifier{
		From:   from,
		Sender: gomail.NewDialer(host, port, username, password),
		Titles: titles,
		Logger: logger,
	}
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	title := fallbackTitle
	if e.Titles != nil {
		t, err := e.Titles.Title(ctx, n.ListingID)
		switch {
		case err != nil:
			e.Logger.Warnw("listing title lookup failed", "listing_id", n.ListingID, "error", err)
		case t != "":
			title = t
		}
	}

	subject, body, err := renderEmail(title, n)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.From)
	m.SetHeader("To", n.SellerEmail)
	m.SetHeader("Reply-To", n.BuyerEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := e.Sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", n.SellerEmail, err)
	}
	return nil
}

func renderEmail(title string, n Notification) (subject, body string, err error) {
	var buf bytes.Buffer
	err = emailTemplate.Execute(&buf, struct {
		Title      string
		BuyerEmail string
		Message    string
	}{title, n.BuyerEmail, n.Message})
	if err != nil {
		return "", "", fmt.Errorf("render email: %w", err)
	}
	return fmt.Sprintf("New Message About Your Listing: \"%s\"", title), buf.String(), nil
}
