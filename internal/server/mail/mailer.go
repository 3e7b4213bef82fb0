// Package mail delivers one-time passcodes to users. The Mailer interface is
// the only thing the registration service sees; the SMTP client below is one
// concrete transport and deployment picks its host and credentials.
package mail

import "context"

// Mailer delivers OTP mail. Failures are surfaced to the caller, never
// retried here: the pending registration is already committed when a send
// fails, so the user recovers through the resend endpoint.
type Mailer interface {
	// SendVerificationCode delivers the initial signup code.
	SendVerificationCode(ctx context.Context, toEmail, username, code string) error

	// SendNewCode delivers a replacement code after a resend request.
	SendNewCode(ctx context.Context, toEmail, username, code string) error
}
