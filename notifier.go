package restbq

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

const slackPostMessageURL = "https://slack.com/api/chat.postMessage"

// Notifier notifies the summary of a run.
type Notifier interface {
	Notify(context.Context, *Summary) error
}

// SlackNotifier is a notifier for Slack.
type SlackNotifier struct {
	Channel   string
	IconEmoji string
	Username  string
	Token     string

	// HTTPClient is used to call Slack API. http.DefaultClient is used if nil.
	HTTPClient *http.Client
}

type slackMessage struct {
	Channel   string `json:"channel"`
	IconEmoji string `json:"icon_emoji,omitempty"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Notify notifies the summary to Slack channel.
func (n *SlackNotifier) Notify(ctx context.Context, s *Summary) error {
	l := log.Ctx(ctx)

	m := &slackMessage{
		Channel:   n.Channel,
		IconEmoji: n.IconEmoji,
		Text:      summaryText(s),
		Username:  n.Username,
	}
	l.Debug().Msgf("m = %+v", m)

	if err := n.postMessage(ctx, m); err != nil {
		return xerrors.Errorf("slack postMessage failed: %w", err)
	}

	return nil
}

func (n *SlackNotifier) postMessage(ctx context.Context, m *slackMessage) error {
	hc := n.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	var sres slackResponse

	resp, err := resty.NewWithClient(hc).R().
		SetContext(ctx).
		SetAuthToken(n.Token).
		SetBody(m).
		SetResult(&sres).
		Post(slackPostMessageURL)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() >= 400 {
		return xerrors.Errorf(
			"slack request failed with status code %d (%s)", resp.StatusCode(), resp.Body())
	}

	if !sres.OK {
		return xerrors.Errorf("failed to send message: %s", sres.Error)
	}

	return nil
}

func summaryText(s *Summary) string {
	b := &strings.Builder{}

	fmt.Fprintf(b, "restbq run finished in %s: %d succeeded, %d skipped, %d failed",
		s.Duration().Round(time.Millisecond), len(s.Succeeded()), len(s.Skipped()), len(s.Failed()))

	for _, r := range s.Results {
		switch r.Outcome {
		case Failed:
			fmt.Fprintf(b, "\n• %s failed at %s: %s", r.Source.Name, r.Stage, r.Err)
		case Skipped:
			fmt.Fprintf(b, "\n• %s skipped (empty payload)", r.Source.Name)
		default:
			fmt.Fprintf(b, "\n• %s loaded %d rows into %s", r.Source.Name, r.Rows, r.Source.Table)
		}
	}

	return b.String()
}
