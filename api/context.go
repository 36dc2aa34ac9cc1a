package api

import (
	"context"
)

type keyType string

const adminSubjectKey keyType = "adminSubject"

// ctxWithAdminSubject stores the subject of a verified admin token
func ctxWithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

// ctxGetAdminSubject returns the admin subject, empty when the request was not authenticated
func ctxGetAdminSubject(ctx context.Context) string {
	subject, _ := ctx.Value(adminSubjectKey).(string)
	return subject
}
