package room

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/congsh/haigui-soup/internal/errors"
	"github.com/congsh/haigui-soup/internal/id"
)

// MessageType identifies the type of a room message.
type MessageType string

const (
	// MessageTypeQuestion is a participant yes/no question.
	MessageTypeQuestion MessageType = "question"
	// MessageTypeAnswer is a host verdict on a question.
	MessageTypeAnswer MessageType = "answer"
	// MessageTypeInfo is a host information drop.
	MessageTypeInfo MessageType = "info"
	// MessageTypeSystem is a room lifecycle announcement.
	MessageTypeSystem MessageType = "system"
	// MessageTypeFlower is a flower reaction.
	MessageTypeFlower MessageType = "flower"
	// MessageTypeTrash is a trash reaction.
	MessageTypeTrash MessageType = "trash"
	// MessageTypeHandRaise announces a raised hand.
	MessageTypeHandRaise MessageType = "handRaise"
)

// System messages are attributed to a fixed pseudo-sender.
const (
	SystemSenderID   = "system"
	SystemSenderName = "系统"
)

// Fixed message contents, matching the game client.
const (
	ContentFlower      = "🌹"
	ContentTrash       = "🗑️"
	ContentRoomEnded   = "主持人已结束房间"
	ContentRoomRestart = "主持人已重新开始房间"
)

// JoinContent is the system announcement for a new member.
func JoinContent(userName string) string {
	return fmt.Sprintf("%s 加入了房间", userName)
}

// HandRaiseContent is the announcement for a raised hand.
func HandRaiseContent(userName string) string {
	return fmt.Sprintf("%s 举手请求回答", userName)
}

// IsValid reports whether the message type is supported.
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeQuestion,
		MessageTypeAnswer,
		MessageTypeInfo,
		MessageTypeSystem,
		MessageTypeFlower,
		MessageTypeTrash,
		MessageTypeHandRaise:
		return true
	default:
		return false
	}
}

// Verdict is the host's answer to a question.
type Verdict int

const (
	// VerdictUnspecified represents an invalid verdict value.
	VerdictUnspecified Verdict = iota
	// VerdictYes answers 是.
	VerdictYes
	// VerdictNo answers 否.
	VerdictNo
	// VerdictUncertain answers 不确定.
	VerdictUncertain
)

// Content returns the fixed answer content for a verdict.
func (v Verdict) Content() string {
	switch v {
	case VerdictYes:
		return "是"
	case VerdictNo:
		return "否"
	case VerdictUncertain:
		return "不确定"
	default:
		return ""
	}
}

// Message is an immutable entry in the room's append-only log.
type Message struct {
	ID         string
	Type       MessageType
	Content    string
	SenderID   string
	SenderName string
	Timestamp  time.Time
	// ReplyToID optionally references an existing message for threading.
	ReplyToID string
}

// NewMessage creates a message with a generated ID and timestamp.
func NewMessage(msgType MessageType, content, senderID, senderName, replyToID string, now func() time.Time, idGenerator func() (string, error)) (Message, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if !msgType.IsValid() {
		return Message{}, apperrors.WithMetadata(
			apperrors.CodeMessageInvalidType,
			fmt.Sprintf("unsupported message type: %q", msgType),
			map[string]string{"Type": string(msgType)},
		)
	}
	if strings.TrimSpace(content) == "" {
		return Message{}, apperrors.New(apperrors.CodeMessageContentEmpty, "message content is required")
	}

	messageID, err := idGenerator()
	if err != nil {
		return Message{}, fmt.Errorf("generate message id: %w", err)
	}

	return Message{
		ID:         messageID,
		Type:       msgType,
		Content:    content,
		SenderID:   senderID,
		SenderName: senderName,
		Timestamp:  now().UTC(),
		ReplyToID:  replyToID,
	}, nil
}

// NewSystemMessage creates a system announcement message.
func NewSystemMessage(content string, now func() time.Time, idGenerator func() (string, error)) (Message, error) {
	return NewMessage(MessageTypeSystem, content, SystemSenderID, SystemSenderName, "", now, idGenerator)
}
