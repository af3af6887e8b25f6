package repositorycache

import "context"

type directiveContextKey struct{}

// WithDirective attaches d to ctx. The read interceptor uses it for queries
// that carry no directive of their own, which lets callers that do not build
// the Query themselves still opt in or out of caching.
func WithDirective(ctx context.Context, d Directive) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if !d.IsSet() {
		return ctx
	}
	return context.WithValue(ctx, directiveContextKey{}, d)
}

func directiveFromContext(ctx context.Context) Directive {
	if ctx == nil {
		return Directive{}
	}
	d, _ := ctx.Value(directiveContextKey{}).(Directive)
	return d
}
