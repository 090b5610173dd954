package flows

import "context"

// AuditFunc emits one audit event. strategy may be empty when no presenter ran.
type AuditFunc func(ctx context.Context, event string, success bool, userID, strategy string, err error, metadata func() map[string]string)

// Deps groups flow dependency sets. The Coordinator builds each set per call
// because endpoint values are only known after resolution.
type Deps struct {
	Authorize AuthorizeDeps
	Bootstrap BootstrapDeps
	LoginTime LoginTimeDeps
	Logout    LogoutDeps
}

func noopMetricInc(int) {}

func noopAudit(context.Context, string, bool, string, string, error, func() map[string]string) {}

func noopLog(string, ...any) {}
