package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NewInvitationEmailData holds data for the email sent to a group's
// responsible address when a host creates an invitation.
type NewInvitationEmailData struct {
	Email     string
	HostName  string
	GroupName string
	Date      string
}

// InvitationAcceptedEmailData holds data for the email sent to the host when
// an invitation is accepted.
type InvitationAcceptedEmailData struct {
	Email     string
	HostName  string
	GroupName string
	Date      string
}

// InvitationRejectedEmailData holds data for the email sent to the host when
// an invitation is rejected.
type InvitationRejectedEmailData struct {
	Email     string
	HostName  string
	GroupName string
	Date      string
	Reason    string
}

// NoShowAlertEmailData holds data for the alert fanned out to every admin
// when guests did not attend.
type NoShowAlertEmailData struct {
	Email     string
	HostName  string
	GroupName string
	Date      string
}

// LoginCodeEmailData holds data for the passwordless login code email.
type LoginCodeEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// EmailService dispatches templated lifecycle emails. Callers treat it as
// fire-and-forget: a delivery failure must never roll back the state
// transition that triggered it.
type EmailService interface {
	SendNewInvitation(ctx context.Context, data *NewInvitationEmailData) error
	SendInvitationAccepted(ctx context.Context, data *InvitationAcceptedEmailData) error
	SendInvitationRejected(ctx context.Context, data *InvitationRejectedEmailData) error
	SendNoShowAlert(ctx context.Context, data *NoShowAlertEmailData) error
	SendLoginCode(ctx context.Context, data *LoginCodeEmailData) error
}
