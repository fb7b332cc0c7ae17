package quarantine

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nvu/mailquar/internal/api"
	"github.com/nvu/mailquar/internal/model"
)

// Gateway adapts the generic api client to the quarantine endpoints.
type Gateway struct {
	client *api.Client
}

// NewGateway wraps an api client.
func NewGateway(client *api.Client) *Gateway {
	return &Gateway{client: client}
}

// ListSpam fetches the quarantined mail within the given bounds. Both
// bounds are optional; an absent bound is simply not sent.
func (g *Gateway) ListSpam(ctx context.Context, params model.QueryParams) ([]model.Mail, error) {
	values := url.Values{}
	if params.StartTime != nil {
		values.Set("startTime", strconv.FormatInt(*params.StartTime, 10))
	}
	if params.EndTime != nil {
		values.Set("endTime", strconv.FormatInt(*params.EndTime, 10))
	}

	var mails []model.Mail
	if err := g.client.Get(ctx, "/quarantine/spam", values, &mails); err != nil {
		return nil, err
	}
	return mails, nil
}

// actionRequest is the body of a quarantine/content disposition call.
type actionRequest struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// PostAction applies one disposition action to one message. The
// gateway's result value is not constrained at this layer and is
// ignored; only the error outcome matters.
func (g *Gateway) PostAction(ctx context.Context, id string, action model.MailAction) error {
	return g.client.Post(ctx, "/quarantine/content", actionRequest{
		Action: action.WireToken(),
		ID:     id,
	}, nil)
}

// ContentURL returns the sandboxed document URL for a message body.
// The body itself is rendered by an external viewer; this layer never
// fetches or parses mail content.
func ContentURL(baseURL, id string) string {
	return baseURL + "/api2/htmlmail/quarantine/content?id=" + url.QueryEscape(id)
}
