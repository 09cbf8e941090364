package restbq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fastjson"
	"golang.org/x/xerrors"
)

// Pipeline fetches sources and replaces their BigQuery tables one by one.
type Pipeline struct {
	cfg *Config

	logger     zerolog.Logger
	httpClient *http.Client
	now        func() time.Time

	extractor extractor
	loader    loader
	archiver  archiver
	notifier  Notifier

	closers []io.Closer
}

// New builds a Pipeline. Clients not injected by options are built from cfg
// when they are first used.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Pipeline, error) {
	logger, _ := NewLogger(os.Stderr, "", false)

	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}

	for _, o := range opts {
		if err := o.apply(p); err != nil {
			return nil, err
		}
	}

	if p.extractor == nil {
		p.extractor = newHTTPExtractor(p.httpClient)
	}

	if p.loader == nil {
		l := newBigQueryLoader(cfg.Project, cfg.Dataset)
		p.loader = l
		p.closers = append(p.closers, l)
	}

	if p.archiver == nil && cfg.ArchiveBucket != "" {
		a := newGCSArchiver(cfg.ArchiveBucket)
		p.archiver = a
		p.closers = append(p.closers, a)
	}

	if p.notifier == nil && cfg.SlackToken != "" && cfg.SlackChannel != "" {
		p.notifier = &SlackNotifier{
			Token:      cfg.SlackToken,
			Channel:    cfg.SlackChannel,
			HTTPClient: p.httpClient,
		}
	}

	return p, nil
}

// Close releases clients built by New.
func (p *Pipeline) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}

// Run processes sources sequentially in the given order.
// Failures of a source are recorded in the summary and never stop the run.
func (p *Pipeline) Run(ctx context.Context, sources []Source) *Summary {
	s := &Summary{StartedAt: p.now()}

	ctx = p.logger.WithContext(ctx)
	ctx = withStartedTime(ctx, s.StartedAt)
	l := log.Ctx(ctx)

	l.Info().Int("sources", len(sources)).Msg("run started")

	for _, src := range sources {
		s.Results = append(s.Results, p.process(ctx, src))
	}

	s.FinishedAt = p.now()

	l.Info().
		Int("succeeded", len(s.Succeeded())).
		Int("skipped", len(s.Skipped())).
		Int("failed", len(s.Failed())).
		Dur("elapsed", s.Duration()).
		Msg("run finished")

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, s); err != nil {
			l.Warn().Err(err).Msg("failed to notify run summary")
		}
	}

	return s
}

func (p *Pipeline) process(ctx context.Context, src Source) (r SourceResult) {
	dest := fmt.Sprintf("%s.%s", p.cfg.Dataset, src.Table)
	l := log.Ctx(ctx).With().Str("source", src.Name).Str("table", dest).Logger()
	ctx = l.WithContext(ctx)

	r = SourceResult{Source: src, Stage: StageExtract}

	fail := func(err error) SourceResult {
		r.Outcome = Failed
		r.Err = err
		l.Error().Err(err).Str("stage", string(r.Stage)).Msgf("failed to load %s into %s", src.Name, dest)
		return r
	}

	defer func() {
		if v := recover(); v != nil {
			r = fail(xerrors.Errorf("panic: %v", v))
		}
	}()

	l.Info().Str("url", src.URL).Msg("extracting")

	body, err := p.extractor.extract(ctx, src)
	if err != nil {
		return fail(xerrors.Errorf("failed to extract: %w", err))
	}

	r.Stage = StageTransform

	var parser fastjson.Parser
	v, err := parsePayload(&parser, body)
	if err != nil {
		return fail(xerrors.Errorf("failed to parse payload: %w", err))
	}

	if IsEmptyPayload(v) {
		l.Warn().Msgf("%s returned no data, skipping load into %s", src.Name, dest)
		r.Outcome = Skipped
		return r
	}

	f, err := Transform(v, src.Mode)
	if err != nil {
		return fail(xerrors.Errorf("failed to transform: %w", err))
	}
	r.Rows, r.Columns = f.Rows(), len(f.Columns)

	l.Info().Int("rows", r.Rows).Int("columns", r.Columns).Str("mode", src.Mode.String()).Msg("normalized")

	if p.archiver != nil {
		uri, err := p.archiver.archive(ctx, src, body)
		if err != nil {
			l.Warn().Err(err).Msg("failed to archive raw payload")
		} else {
			r.Archive = uri
			l.Debug().Str("archive", uri).Msg("raw payload archived")
		}
	}

	r.Stage = StageLoad

	if err := p.loader.load(ctx, src.Table, f, Replace); err != nil {
		return fail(xerrors.Errorf("failed to load: %w", err))
	}

	l.Info().Int("rows", r.Rows).Msg("table replaced")
	r.Outcome = Succeeded

	return r
}

// parsePayload parses a response body. A blank body yields nil.
func parsePayload(parser *fastjson.Parser, body []byte) (*fastjson.Value, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return parser.ParseBytes(body)
}

// Transform normalizes a non-empty payload into a frame with sanitized
// column names and coerced column types.
func Transform(v *fastjson.Value, mode Mode) (*Frame, error) {
	f, err := Normalize(v, mode)
	if err != nil {
		return nil, err
	}

	if err := Sanitize(f); err != nil {
		return nil, err
	}

	Coerce(f)

	return f, nil
}
