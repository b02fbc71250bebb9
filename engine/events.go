package engine

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// A comment was written, payload is CommentCreatedEvent.
	TOPIC_COMMENT_CREATED = "topic.comment_created"
)

type CommentCreatedEvent struct {
	FeedId    uint   `json:"feedId"`
	FeedTitle string `json:"feedTitle"`
	Username  string `json:"username"`
	Content   string `json:"content"`
}

// PublishCommentCreated puts the event on the bus. Nothing waits for
// subscribers.
func PublishCommentCreated(publisher message.Publisher, event CommentCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "fail to marshal comment event")
	}
	return publisher.Publish(TOPIC_COMMENT_CREATED, message.NewMessage(uuid.NewString(), payload))
}

func DecodeCommentCreated(msg *message.Message) (CommentCreatedEvent, error) {
	var event CommentCreatedEvent
	err := json.Unmarshal(msg.Payload, &event)
	return event, errors.Wrap(err, "fail to unmarshal comment event")
}
