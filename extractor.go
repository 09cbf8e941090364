package restbq

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/xerrors"
)

// extractor fetches the raw payload of a source.
type extractor interface {
	extract(context.Context, Source) ([]byte, error)
}

// HTTPStatusError is returned when a source responds with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s responded %s", e.URL, e.Status)
}

type httpExtractor struct {
	client *resty.Client
}

func newHTTPExtractor(hc *http.Client) extractor {
	var c *resty.Client
	if hc != nil {
		c = resty.NewWithClient(hc)
	} else {
		c = resty.New()
	}

	c.SetHeader("Accept", "application/json")
	c.SetHeader("User-Agent", "restbq")

	return &httpExtractor{client: c}
}

func (e *httpExtractor) extract(ctx context.Context, src Source) ([]byte, error) {
	l := log.Ctx(ctx)

	resp, err := e.client.R().SetContext(ctx).Get(src.URL)
	if err != nil {
		return nil, xerrors.Errorf("failed to GET %s: %w", src.URL, err)
	}

	l.Debug().
		Str("url", src.URL).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.Time()).
		Int("bytes", len(resp.Body())).
		Msg("response received")

	if !resp.IsSuccess() {
		return nil, &HTTPStatusError{URL: src.URL, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	enc := src.Encoding
	if enc == nil {
		enc = charsetEncoding(resp.Header().Get("Content-Type"))
	}

	body := resp.Body()
	if enc != nil {
		body, err = enc.NewDecoder().Bytes(body)
		if err != nil {
			return nil, xerrors.Errorf("failed to decode body of %s: %w", src.URL, err)
		}
	}

	return body, nil
}

// charsetEncoding returns the encoding named by the charset parameter of a
// Content-Type header, or nil for UTF-8 and unknown charsets.
func charsetEncoding(contentType string) encoding.Encoding {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}

	charset := strings.TrimSpace(params["charset"])
	if charset == "" {
		return nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil
	}

	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil
	}

	return enc
}
