package internal

import "github.com/e-schultz/floativerse/internal/ai"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator ai.Generator
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator answers AI commands with g instead of the provider named in
// the ai config section.
func WithGenerator(g ai.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}
