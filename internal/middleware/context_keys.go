package middleware

import "context"

const subjectKey contextKey = "subjectID"

// GetSubjectFromContext retrieves the verified token subject (the IdP subject
// identifier) set by AuthMiddleware.
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}
