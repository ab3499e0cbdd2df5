package service

import "freelance-auth-api/logger"

// Mailer delivers password reset tokens out-of-band. The auth core only
// generates and validates tokens; actual email transport lives behind this
// interface.
type Mailer interface {
	SendPasswordReset(email, token string) error
}

// LogMailer is a stand-in Mailer that records the delivery event. It
// deliberately does not log the token itself.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(email, token string) error {
	logger.Log.WithField("email", email).Info("Password reset token issued")
	return nil
}
