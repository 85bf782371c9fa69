package runner

import "github.com/vk/fusegrid/internal/hooks"

type options struct {
	hooks             *hooks.Manager
	asyncIO           bool
	useMemoryDatasets bool
	pipelineName      string
}

func defaultOptions() options {
	return options{
		useMemoryDatasets: true,
		pipelineName:      "__default__",
	}
}

// Option configures a runner.
type Option func(*options)

// WithHooks routes run and node notifications to m.
func WithHooks(m *hooks.Manager) Option {
	return func(o *options) {
		o.hooks = m
	}
}

// WithAsyncIO loads the inputs and saves the outputs of each node
// concurrently. Nodes themselves still run one at a time.
func WithAsyncIO(enabled bool) Option {
	return func(o *options) {
		o.asyncIO = enabled
	}
}

// WithMemoryDatasets controls whether intermediate artifacts of fused groups
// are rebound to run-scoped memory. Enabled by default.
func WithMemoryDatasets(enabled bool) Option {
	return func(o *options) {
		o.useMemoryDatasets = enabled
	}
}

// WithPipelineName sets the name reported to hooks.
func WithPipelineName(name string) Option {
	return func(o *options) {
		o.pipelineName = name
	}
}

func build(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.hooks == nil {
		o.hooks = hooks.NewManager()
	}
	return o
}
