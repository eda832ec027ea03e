package domain

import "time"

type User struct {
	UserID            string          `json:"id" dynamodbav:"user_id"`
	Username          string          `json:"username" dynamodbav:"username"`
	Email             string          `json:"email" dynamodbav:"email"`
	Phone             *string         `json:"phone" dynamodbav:"phone"`
	PasswordHash      string          `json:"-" dynamodbav:"password_hash"`
	Role              string          `json:"role" dynamodbav:"role"`
	FirstName         string          `json:"first_name" dynamodbav:"first_name"`
	LastName          string          `json:"last_name" dynamodbav:"last_name"`
	Address           string          `json:"address,omitempty" dynamodbav:"address"`
	PhotoKey          string          `json:"photo_key,omitempty" dynamodbav:"photo_key"`
	Coordinates       *RawCoordinates `json:"coordinates,omitempty" dynamodbav:"coordinates"`
	PreferredRadiusKm float64         `json:"preferred_radius_km" dynamodbav:"preferred_radius_km"`
	NotifyEmergency   bool            `json:"notify_emergency" dynamodbav:"notify_emergency"`
	NotifyResponses   bool            `json:"notify_responses" dynamodbav:"notify_responses"`
	FCMToken          *string         `json:"-" dynamodbav:"fcm_token"`
	PushEndpointARN   string          `json:"-" dynamodbav:"push_endpoint_arn"`
	AuthProvider      string          `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub         string          `json:"-"                       dynamodbav:"google_sub"`
	Enable            bool            `json:"enable" dynamodbav:"enable"`
	CreatedAt         time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time       `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Address   string  `json:"address"`
}

type UpdateUserRequest struct {
	Username          *string         `json:"username"`
	Email             *string         `json:"email" validate:"omitempty,email"`
	Phone             *string         `json:"phone"`
	FirstName         *string         `json:"first_name"`
	LastName          *string         `json:"last_name"`
	Address           *string         `json:"address"`
	PhotoKey          *string         `json:"photo_key"`
	Coordinates       *RawCoordinates `json:"coordinates"`
	PreferredRadiusKm *float64        `json:"preferred_radius_km" validate:"omitempty,gt=0"`
	NotifyEmergency   *bool           `json:"notify_emergency"`
	NotifyResponses   *bool           `json:"notify_responses"`
	Role              *string         `json:"role"`
	Enable            *bool           `json:"enable"`
}
