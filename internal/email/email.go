// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// MeetingInviteData holds data for invitation emails
type MeetingInviteData struct {
	MeetingTitle string
	OrganizerName string
	Duration     int
	Location     string
	Description  string
	ProposedTime string
	RespondURL   string
	MeetingURL   string
}

// MeetingConfirmedData holds data for confirmation emails
type MeetingConfirmedData struct {
	MeetingTitle  string
	OrganizerName string
	ConfirmedTime string
	Location      string
	MeetingURL    string
}

// ResponseReminderData holds data for reminder emails
type ResponseReminderData struct {
	MeetingTitle  string
	OrganizerName string
	RespondURL    string
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	s.templates["meeting_invite"] = template.Must(template.New("meeting_invite").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #6366f1; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .meeting-card { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .btn { display: inline-block; background: #6366f1; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>{{.OrganizerName}} invited you to a meeting</h2>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p><strong>{{.OrganizerName}}</strong> wants to find a time for <strong>{{.MeetingTitle}}</strong>.</p>

        <div class="meeting-card">
            <h3>{{.MeetingTitle}}</h3>
            <p><strong>Duration:</strong> {{.Duration}} minutes</p>
            {{if .ProposedTime}}<p><strong>Proposed time:</strong> {{.ProposedTime}}</p>{{end}}
            {{if .Location}}<p><strong>Location:</strong> {{.Location}}</p>{{end}}
            {{if .Description}}<p>{{.Description}}</p>{{end}}
        </div>

        <a href="{{.RespondURL}}" class="btn">Share Your Availability</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            Or view the meeting page: <a href="{{.MeetingURL}}">{{.MeetingURL}}</a>
        </p>
    </div>
    <div class="footer">
        Candidly • Scheduling without the back-and-forth
    </div>
</div>
</body>
</html>
`))

	s.templates["meeting_confirmed"] = template.Must(template.New("meeting_confirmed").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #10b981; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #10b981; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Meeting confirmed</h2>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p><strong>{{.OrganizerName}}</strong> confirmed <strong>{{.MeetingTitle}}</strong> for:</p>
        <p style="font-size: 18px;"><strong>{{.ConfirmedTime}}</strong></p>
        {{if .Location}}<p><strong>Location:</strong> {{.Location}}</p>{{end}}

        <a href="{{.MeetingURL}}" class="btn">View Meeting &amp; Add to Calendar</a>
    </div>
    <div class="footer">
        Candidly • Scheduling without the back-and-forth
    </div>
</div>
</body>
</html>
`))

	s.templates["response_reminder"] = template.Must(template.New("response_reminder").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #f59e0b; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #f59e0b; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Waiting on your availability</h2>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p><strong>{{.OrganizerName}}</strong> is still waiting for your availability for <strong>{{.MeetingTitle}}</strong>.</p>

        <a href="{{.RespondURL}}" class="btn">Respond Now</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            It only takes a minute, and helps everyone settle on a time.
        </p>
    </div>
    <div class="footer">
        Candidly • Scheduling without the back-and-forth
    </div>
</div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Printf("[Email] Not configured, would send to %s: %s", strings.Join(email.To, ", "), email.Subject)
		return nil
	}

	// Build message
	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range email.To {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		if _, err = w.Write(msg.Bytes()); err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		if err = w.Close(); err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	return smtp.SendMail(addr, auth, s.config.From, email.To, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// SendMeetingInvite sends an invitation to share availability
func (s *Service) SendMeetingInvite(to string, data MeetingInviteData) error {
	if data.OrganizerName == "" {
		data.OrganizerName = "Someone"
	}
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("%s invited you to: %s", data.OrganizerName, data.MeetingTitle),
		"meeting_invite",
		data,
	)
}

// SendMeetingConfirmed announces the chosen time to a participant
func (s *Service) SendMeetingConfirmed(to string, data MeetingConfirmedData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("Confirmed: %s", data.MeetingTitle),
		"meeting_confirmed",
		data,
	)
}

// SendResponseReminder nudges a participant who has not responded yet
func (s *Service) SendResponseReminder(to string, data ResponseReminderData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("Reminder: share your availability for %s", data.MeetingTitle),
		"response_reminder",
		data,
	)
}
