package validation

import "context"

type contextKey string

func (c contextKey) String() string {
	return "validation-context-key-" + string(c)
}

const errorsContextKey = contextKey("errors")

type validationContext struct {
	Errors  []error
	Options *Options
}

// ContextWithValidationContext returns a context that collects findings added with AddValidationError.
func ContextWithValidationContext(ctx context.Context, opts ...Option) context.Context {
	return context.WithValue(ctx, errorsContextKey, &validationContext{Options: NewOptions(opts...)})
}

// AddValidationError records a finding, applying the context's options. Without a
// validation context the finding is dropped.
func AddValidationError(ctx context.Context, err *Error) {
	validationContext, ok := ctx.Value(errorsContextKey).(*validationContext)
	if !ok {
		return
	}

	if err = validationContext.Options.Apply(err); err == nil {
		return
	}

	validationContext.Errors = append(validationContext.Errors, err)
}

func GetValidationErrors(ctx context.Context) []error {
	validationContext, ok := ctx.Value(errorsContextKey).(*validationContext)
	if !ok || len(validationContext.Errors) == 0 {
		return nil
	}

	return validationContext.Errors
}
