package services

import "context"

type requestIDKey struct{}

// WithRequestID hängt die Request-ID an den Kontext.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID liest die Request-ID aus dem Kontext, leer wenn keine gesetzt ist.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
