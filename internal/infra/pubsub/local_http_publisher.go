package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/sethvargo/go-retry"
)

const (
	localSubscription = "projects/local/subscriptions/identity-events"
	localPushTimeout  = 10 * time.Second
	localPushRetries  = 2
	localPushBackoff  = 100 * time.Millisecond
)

// PushMessage mirrors the envelope Pub/Sub push subscriptions POST, so a
// consumer can be developed against the local publisher unchanged.
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// localHTTPPublisher POSTs push envelopes to a development endpoint. Transport
// errors and 5xx answers are retried; any other non-2xx answer is final.
type localHTTPPublisher struct {
	endpoint string
	client   *http.Client
	backoff  func() retry.Backoff
	logger   *slog.Logger
}

// NewLocalHTTPPublisher creates the development publisher.
func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: localPushTimeout},
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(localPushRetries, retry.NewExponential(localPushBackoff))
		},
		logger: logger,
	}
}

func (p *localHTTPPublisher) PublishIdentityEvent(ctx context.Context, event *service.IdentityEvent) error {
	body, err := newPushEnvelope(event, time.Now())
	if err != nil {
		return err
	}

	attempts := 0
	err = retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++

		return p.push(ctx, body, event.RequestID)
	})
	if err != nil {
		return errors.Wrapf(err, "push %s after %d attempts", event.Type, attempts)
	}

	p.logger.DebugContext(ctx, "identity event pushed",
		slog.String("endpoint", p.endpoint),
		slog.String("event_id", event.EventID),
		slog.String("type", event.Type),
		slog.Int("attempts", attempts),
	)

	return nil
}

func (p *localHTTPPublisher) push(ctx context.Context, body []byte, requestID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if requestID != "" {
		req.Header.Set(echo.HeaderXRequestID, requestID)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return retry.RetryableError(errors.WithStack(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return retry.RetryableError(errors.Errorf("push endpoint returned non-success status: %d", resp.StatusCode))
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return errors.Errorf("push endpoint returned non-success status: %d", resp.StatusCode)
	}

	return nil
}

func newPushEnvelope(event *service.IdentityEvent, now time.Time) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "encode identity event")
	}

	var msg PushMessage
	msg.Subscription = localSubscription
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.MessageID = event.EventID
	msg.Message.PublishTime = now.UTC().Format(time.RFC3339)
	msg.Message.Attributes = eventAttributes(event)

	body, err := json.Marshal(msg)

	return body, errors.WithStack(err)
}

func (p *localHTTPPublisher) Close() error {
	return nil
}
