package modules

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rinblog/rin/engine"
	Logger "github.com/rinblog/rin/utils/log"
	"github.com/slack-go/slack"
)

type NotifierConfig struct {
	Name string
	// Incoming webhook receiving the notifications. Empty disables posting.
	WebhookUrl string
	// Used to build links back to the blog.
	FrontendUrl string
}

// PostWebhookFunc matches slack.PostWebhook.
type PostWebhookFunc func(url string, msg *slack.WebhookMessage) error

// Notifier listens for new comments on the event bus and forwards them to an
// incoming webhook, so the blog owner learns about them.
type Notifier struct {
	Config NotifierConfig

	EventBus message.Subscriber

	postWebhook PostWebhookFunc
}

func NewNotifier(config NotifierConfig, e message.Subscriber) *Notifier {
	return &Notifier{
		Config:      config,
		EventBus:    e,
		postWebhook: slack.PostWebhook,
	}
}

func FormatCommentNotification(frontendUrl string, event engine.CommentCreatedEvent) string {
	return fmt.Sprintf("%s/feed/%d\n%s commented on: %s\n%s", frontendUrl, event.FeedId, event.Username, event.FeedTitle, event.Content)
}

// Notify posts one event. Errors are logged, never retried.
func (n *Notifier) Notify(event engine.CommentCreatedEvent) {
	if n.Config.WebhookUrl == "" {
		return
	}
	msg := &slack.WebhookMessage{Text: FormatCommentNotification(n.Config.FrontendUrl, event)}
	if err := n.postWebhook(n.Config.WebhookUrl, msg); err != nil {
		Logger.Log.Error("fail to post comment notification: ", err)
	}
}

func (n *Notifier) RunModule(ctx context.Context) error {
	messages, err := n.EventBus.Subscribe(ctx, engine.TOPIC_COMMENT_CREATED)
	if err != nil {
		return err
	}

	// The channel is closed once ctx is done.
	for msg := range messages {
		msg.Ack()
		event, err := engine.DecodeCommentCreated(msg)
		if err != nil {
			Logger.Log.Error(err)
			continue
		}
		n.Notify(event)
	}
	return nil
}

func (n *Notifier) Name() string {
	return n.Config.Name
}

func (n *Notifier) Shutdown() {}
