package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"candle-shop/metrics"
	"candle-shop/middleware"
	"candle-shop/models"

	"github.com/sirupsen/logrus"
)

const maxReplyLength = 10000

// MessageStore is the contact inbox the message handlers need
type MessageStore interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Get(ctx context.Context, id int64) (models.Message, error)
	MarkReplied(ctx context.Context, id int64) error
}

// MessageReplier emails an answer to a contact message
type MessageReplier interface {
	SendMessageReply(msg models.Message, reply string) error
}

// MessageController handles contact form intake and admin replies
type MessageController struct {
	Messages MessageStore
	Replier  MessageReplier
}

// NewMessageController creates a new MessageController
func NewMessageController(messages MessageStore, replier MessageReplier) *MessageController {
	return &MessageController{Messages: messages, Replier: replier}
}

// SubmitMessage stores an anonymous contact message
func (mc *MessageController) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := decodeJSON(w, r, &msg); err != nil {
		metrics.RecordMessage("invalid")
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Body = strings.TrimSpace(msg.Body)
	if err := validate.Struct(msg); err != nil {
		metrics.RecordMessage("invalid")
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	saved, err := mc.Messages.Create(ctx, msg)
	if err != nil {
		metrics.RecordMessage("failed")
		writeStoreError(w, r, err, "Message not found")
		return
	}
	metrics.RecordMessage("ok")

	middleware.Logger(r.Context()).WithFields(logrus.Fields{
		"message_id": saved.ID,
		"email":      saved.Email,
		"subject":    saved.Subject,
	}).Info("message received")
	writeJSON(w, map[string]string{"message": "Message received successfully"})
}

// GetMessages lists the inbox, newest first
func (mc *MessageController) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	messages, err := mc.Messages.List(ctx)
	if err != nil {
		writeStoreError(w, r, err, "Messages not found")
		return
	}
	writeJSON(w, messages)
}

// decodeReply accepts either a bare JSON string or {"body": "..."}
func decodeReply(w http.ResponseWriter, r *http.Request) (string, error) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return "", err
	}
	var reply string
	if err := json.Unmarshal(raw, &reply); err == nil {
		return reply, nil
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}
	return body.Body, nil
}

// ReplyToMessage emails the admin's answer to the sender of a message
func (mc *MessageController) ReplyToMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}
	reply, err := decodeReply(w, r)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		http.Error(w, "Reply body is required", http.StatusBadRequest)
		return
	}
	if len(reply) > maxReplyLength {
		http.Error(w, "Reply body is too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	msg, err := mc.Messages.Get(ctx, messageID)
	if err != nil {
		writeStoreError(w, r, err, "Message not found")
		return
	}

	log := middleware.Logger(r.Context()).WithField("message_id", messageID)
	err = mc.Replier.SendMessageReply(msg, reply)
	metrics.RecordEmail("message_reply", err)
	if err != nil {
		log.WithError(err).Error("failed to send reply")
		http.Error(w, "Failed to send reply", http.StatusBadGateway)
		return
	}
	if err := mc.Messages.MarkReplied(ctx, messageID); err != nil {
		log.WithError(err).Warn("reply sent but not recorded")
	}

	log.WithField("to", msg.Email).Info("message replied")
	writeJSON(w, map[string]string{"message": "Reply sent successfully"})
}
