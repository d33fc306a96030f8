package ctxutil

import "context"

type idsKey struct{}

// IDs correlate one API request across logs, spans and error bodies.
type IDs struct {
	TraceID   string
	RequestID string
}

func WithIDs(ctx context.Context, ids IDs) context.Context {
	return context.WithValue(ctx, idsKey{}, ids)
}

func IDsFrom(ctx context.Context) (IDs, bool) {
	if ctx == nil {
		return IDs{}, false
	}
	ids, ok := ctx.Value(idsKey{}).(IDs)
	return ids, ok
}

func TraceID(ctx context.Context) string {
	ids, _ := IDsFrom(ctx)
	return ids.TraceID
}

func RequestID(ctx context.Context) string {
	ids, _ := IDsFrom(ctx)
	return ids.RequestID
}
