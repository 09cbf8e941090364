package restbq_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.nownabe.dev/restbq"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(f roundTripperFunc) *http.Client {
	return &http.Client{Transport: f}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testSummary() *restbq.Summary {
	started := time.Date(2020, 11, 21, 0, 0, 0, 0, time.UTC)

	return &restbq.Summary{
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Results: []restbq.SourceResult{
			{
				Source:  restbq.Source{Name: "products", Table: "products"},
				Outcome: restbq.Succeeded,
				Stage:   restbq.StageLoad,
				Rows:    20,
			},
			{
				Source:  restbq.Source{Name: "carts", Table: "carts"},
				Outcome: restbq.Failed,
				Stage:   restbq.StageExtract,
				Err:     errors.New("GET https://fakestoreapi.com/carts responded 503 Service Unavailable"),
			},
		},
	}
}

func TestSlackNotifier(t *testing.T) {
	var body string

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))

		b, _ := io.ReadAll(req.Body)
		body = string(b)

		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})

	n := &restbq.SlackNotifier{
		Channel:    "#channel",
		Token:      "token",
		IconEmoji:  ":emoji:",
		Username:   "username",
		HTTPClient: client,
	}

	require.NoError(t, n.Notify(context.Background(), testSummary()))

	for _, s := range []string{
		`"channel":"#channel"`,
		`1 succeeded, 0 skipped, 1 failed`,
		`products loaded 20 rows into products`,
		`carts failed at extract`,
	} {
		assert.Contains(t, body, s)
	}
}

func TestSlackNotifier_error(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"ok":false,"error":"channel_not_found"}`), nil
	})

	n := &restbq.SlackNotifier{Channel: "#nope", Token: "token", HTTPClient: client}

	err := n.Notify(context.Background(), testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
