package pdfburger

import (
	"io"
	"log/slog"

	"github.com/lvillar/pdfburger/codec"
)

// Option is a functional option for configuring a Burger via New.
type Option func(*config)

type config struct {
	codec    codec.Codec
	logger   *slog.Logger
	progress func(Event)
}

// WithCodec sets the PDF codec used to read and merge documents.
// The default is codec.NewGofpdi().
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithLogger sets the structured logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithProgress registers a callback that receives merge progress events.
func WithProgress(fn func(Event)) Option {
	return func(cfg *config) {
		cfg.progress = fn
	}
}

// New creates a Burger. If no options are given it uses the gofpdi codec and
// discards log output.
//
// Example:
//
//	b := pdfburger.New(
//	    pdfburger.WithCodec(codec.NewPDFCPU()),
//	    pdfburger.WithLogger(slog.Default()),
//	)
func New(opts ...Option) *Burger {
	cfg := &config{
		codec:  codec.NewGofpdi(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Burger{
		codec:    cfg.codec,
		logger:   cfg.logger,
		progress: cfg.progress,
		resolver: &Resolver{codec: cfg.codec, logger: cfg.logger},
	}
}
