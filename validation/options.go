package validation

type Option func(o *Options)

// Options control which findings a validation run reports.
type Options struct {
	IgnoredRules      map[string]struct{}
	SeverityOverrides map[string]Severity
}

// WithIgnoredRules drops findings of the given rules.
func WithIgnoredRules(ruleIDs ...string) Option {
	return func(o *Options) {
		if o.IgnoredRules == nil {
			o.IgnoredRules = make(map[string]struct{}, len(ruleIDs))
		}
		for _, id := range ruleIDs {
			o.IgnoredRules[id] = struct{}{}
		}
	}
}

// WithSeverity reports findings of the rule with the given severity.
func WithSeverity(ruleID string, severity Severity) Option {
	return func(o *Options) {
		if o.SeverityOverrides == nil {
			o.SeverityOverrides = make(map[string]Severity)
		}
		o.SeverityOverrides[ruleID] = severity
	}
}

func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Apply filters and re-grades a finding. It returns nil when the finding is ignored.
func (o *Options) Apply(err *Error) *Error {
	if o == nil || err == nil {
		return err
	}
	if _, ok := o.IgnoredRules[err.Rule]; ok {
		return nil
	}
	if severity, ok := o.SeverityOverrides[err.Rule]; ok && severity != err.Severity {
		c := *err
		c.Severity = severity
		return &c
	}
	return err
}
