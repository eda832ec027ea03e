package domain

import "time"

// Notification event types.
const (
	NotificationResponse  = "response_received"
	NotificationEmergency = "emergency_alert"
)

type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Type           string    `json:"type" dynamodbav:"type"`
	PostID         string    `json:"post_id,omitempty" dynamodbav:"post_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Readed         int       `json:"readed" dynamodbav:"readed"` // legacy field name preserved
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
