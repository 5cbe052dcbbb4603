package logger

import (
	"fmt"
	"io"
	"net/http"
)

// Builder assembles a Logger for a service: domain and application tags,
// optional Seq and Splunk sinks, title prefixes and field blacklist.
//
//	log, sinks, err := logger.NewBuilder(cfg).
//	    WithDomain("payments").
//	    WithApplication("payments-api").
//	    Build()
type Builder struct {
	cfg         Config
	domain      string
	application string
	client      *http.Client
	sinks       []Sink
}

// NewBuilder starts a builder from a logging config.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithDomain sets the domain tag attached to every entry.
func (b *Builder) WithDomain(domain string) *Builder {
	b.domain = domain
	return b
}

// WithApplication sets the application tag attached to every entry.
func (b *Builder) WithApplication(name string) *Builder {
	b.application = name
	return b
}

// WithSeq enables the Seq sink.
func (b *Builder) WithSeq(cfg SeqConfig) *Builder {
	b.cfg.Seq = cfg
	return b
}

// WithSplunk enables the Splunk sink.
func (b *Builder) WithSplunk(cfg SplunkConfig) *Builder {
	b.cfg.Splunk = cfg
	return b
}

// WithSink adds a custom sink.
func (b *Builder) WithSink(s Sink) *Builder {
	b.sinks = append(b.sinks, s)
	return b
}

// WithHTTPClient sets the client used by the HTTP sinks.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.client = c
	return b
}

// Build validates the config and returns the logger together with the sinks
// it writes to. Sinks must be started and stopped by the caller.
func (b *Builder) Build() (*Logger, []Sink, error) {
	cfg := b.cfg
	if cfg.ServiceName == "" {
		cfg.ServiceName = b.application
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}

	client := b.client
	if client == nil && cfg.SinkTLS.IsEnabled() {
		tlsCfg, err := cfg.SinkTLS.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("logger: %w", err)
		}
		client = &http.Client{
			Timeout:   defaultSinkTimeout,
			Transport: &http.Transport{TLSClientConfig: tlsCfg, Proxy: http.ProxyFromEnvironment},
		}
	}

	sinks := append([]Sink(nil), b.sinks...)
	if cfg.Seq.Enabled() {
		sinks = append(sinks, NewSeqSink(cfg.Seq, client))
	}
	if cfg.Splunk.Enabled() {
		sinks = append(sinks, NewSplunkSink(cfg.Splunk, b.application, client))
	}

	writers := make([]io.Writer, 0, len(sinks))
	for _, s := range sinks {
		writers = append(writers, s)
	}

	tags := map[string]interface{}{}
	if b.domain != "" {
		tags[FieldDomain] = b.domain
	}
	if b.application != "" {
		tags[FieldApplication] = b.application
	}

	return newLogger(&cfg, cfg.ServiceName, writers, tags), sinks, nil
}
