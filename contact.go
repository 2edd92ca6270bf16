package folio

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/mailer"
)

const (
	msgContactThanks   = "Thank you for your message! I'll get back to you soon."
	msgContactRequired = "All fields are required"
	msgContactEmail    = "Please provide a valid email address"
	msgContactLimited  = "Too many contact form submissions, please try again later."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactSubmission is a visitor's message from the contact form.
type ContactSubmission struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func (s ContactSubmission) trimmed() ContactSubmission {
	return ContactSubmission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate checks that every field has non-blank content and that the email,
// exactly as submitted, looks like an address.
func (s ContactSubmission) Validate() error {
	t := s.trimmed()
	if t.Name == "" || t.Email == "" || t.Subject == "" || t.Message == "" {
		return &ValidationError{Message: msgContactRequired}
	}
	if !emailPattern.MatchString(s.Email) {
		return &ValidationError{Message: msgContactEmail}
	}
	return nil
}

// MailMessage builds the notification sent to the site owner at to. Every
// submitted value is HTML-escaped; the visitor becomes the Reply-To.
func (s ContactSubmission) MailMessage(to string) mailer.Message {
	body := strings.ReplaceAll(html.EscapeString(s.Message), "\n", "<br>")
	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", html.EscapeString(s.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(s.Email))
	fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>\n", html.EscapeString(s.Subject))
	fmt.Fprintf(&b, "<p><strong>Message:</strong></p>\n<p>%s</p>\n", body)

	return mailer.Message{
		To:      to,
		ReplyTo: s.Email,
		Subject: "Portfolio Contact: " + s.Subject,
		HTML:    b.String(),
	}
}

// submitContact validates sub and relays it to the configured contact
// address. Failures are a *ValidationError or a *RelayError.
func (a *App) submitContact(ctx context.Context, sub ContactSubmission) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	sub = sub.trimmed()
	msg := sub.MailMessage(a.Config.ContactEmail)
	msg.Date = a.now()
	if err := a.mailer.Send(ctx, msg); err != nil {
		return &RelayError{Err: err}
	}
	a.Echo.Logger.Infof("contact: message from %s relayed", sub.Email)
	return nil
}

func (a *App) handleContactAPI(c echo.Context) error {
	var sub ContactSubmission
	if err := c.Bind(&sub); err != nil {
		return &ValidationError{Message: "Invalid request body"}
	}
	if err := a.submitContact(c.Request().Context(), sub); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse(msgContactThanks))
}

// handleContactForm serves browsers without JavaScript: the outcome goes
// into a session flash and the visitor is sent back to the contact page.
func (a *App) handleContactForm(c echo.Context) error {
	var sub ContactSubmission
	if err := c.Bind(&sub); err != nil {
		c.Logger().Warnf("contact form bind: %v", err)
	}

	err := a.submitContact(c.Request().Context(), sub)
	var ve *ValidationError
	switch {
	case err == nil:
		err = setFlash(c, msgContactThanks, false)
	case errors.As(err, &ve):
		err = setFlash(c, ve.Message, true)
	default:
		c.Logger().Errorf("contact form: %v", err)
		err = setFlash(c, msgRelayFailed, true)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact")
}

func (a *App) contactFormLimited(c echo.Context) error {
	if err := setFlash(c, msgContactLimited, true); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact")
}
