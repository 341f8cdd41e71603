package authgate

import "context"

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventTokenAccepted     = "token_accepted"
	auditEventTokenRejected     = "token_rejected"
	auditEventTokenExpired      = "token_expired"
	auditEventSessionMissing    = "session_missing"
	auditEventSessionSwept      = "session_swept"
	auditEventLogoutSession     = "logout_session"
)

func (e *Engine) emitAudit(ctx context.Context, eventType, username string, success bool, cause error) {
	if e == nil || e.audit == nil {
		return
	}

	event := newAuditEvent(eventType)
	event.Username = username
	event.IP = clientIPFromContext(ctx)
	event.UserAgent = userAgentFromContext(ctx)
	event.Success = success
	if cause != nil {
		event.Error = cause.Error()
	}

	e.audit.Emit(ctx, event)
}
