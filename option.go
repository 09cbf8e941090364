package restbq

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures Pipeline.
type Option interface {
	apply(*Pipeline) error
}

type optionFunc func(*Pipeline) error

func (f optionFunc) apply(p *Pipeline) error {
	return f(p)
}

// WithLogger sets the logger every component of the pipeline logs to.
func WithLogger(l zerolog.Logger) Option {
	return optionFunc(func(p *Pipeline) error {
		p.logger = l
		return nil
	})
}

// WithHTTPClient configures the HTTP client used to fetch sources.
func WithHTTPClient(c *http.Client) Option {
	return optionFunc(func(p *Pipeline) error {
		p.httpClient = c
		return nil
	})
}

// WithNotifier configures a notifier receiving the summary of each run.
// It overrides the Slack notifier built from Config.
func WithNotifier(n Notifier) Option {
	return optionFunc(func(p *Pipeline) error {
		p.notifier = n
		return nil
	})
}

func withClock(now func() time.Time) Option {
	return optionFunc(func(p *Pipeline) error {
		p.now = now
		return nil
	})
}

func withExtractor(e extractor) Option {
	return optionFunc(func(p *Pipeline) error {
		p.extractor = e
		return nil
	})
}

func withLoader(l loader) Option {
	return optionFunc(func(p *Pipeline) error {
		p.loader = l
		return nil
	})
}

func withArchiver(a archiver) Option {
	return optionFunc(func(p *Pipeline) error {
		p.archiver = a
		return nil
	})
}
