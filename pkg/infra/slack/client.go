package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
)

type client struct {
	api *slack.Client
}

// NewClient creates a Slack Web API client with the bot token
func NewClient(token string) interfaces.SlackClient {
	return &client{api: slack.New(token)}
}

// PostThreadMessage posts a markdown message to a channel, as a threaded
// reply when threadTS is non-empty.
func (c *client) PostThreadMessage(ctx context.Context, channel, threadTS, text string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	if _, _, err := c.api.PostMessageContext(ctx, channel, opts...); err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel", channel))
	}
	return nil
}

// UserRealName resolves a Slack user ID to the user's display name
func (c *client) UserRealName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get Slack user info", goerr.V("user", userID))
	}
	return user.RealName, nil
}
