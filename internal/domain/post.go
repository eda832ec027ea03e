package domain

import "time"

// Urgency levels, ordinal. High urgency drives the emergency feed and push fan-out.
const (
	UrgencyLow    = 1
	UrgencyMedium = 2
	UrgencyHigh   = 3
)

// Post types.
const (
	PostTypeNeed  = "need"
	PostTypeOffer = "offer"
)

// RawCoordinates is the stored shape of a lat/lng pair. Values are kept as
// strings because legacy records wrote them that way; they are parsed (and
// rejected per record, not per batch) wherever a distance is computed.
type RawCoordinates struct {
	Lat string `json:"lat" dynamodbav:"lat"`
	Lng string `json:"lng" dynamodbav:"lng"`
}

// ResponderEntry links a responding user to a post. Accepted is flipped by
// the post owner; it is never true at insertion. A post holds at most one
// entry per user_id — the response service enforces this transactionally.
type ResponderEntry struct {
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Accepted    bool      `json:"accepted" dynamodbav:"accepted"`
	RespondedAt time.Time `json:"responded_at" dynamodbav:"responded_at"`
}

type Post struct {
	PostID             string           `json:"id" dynamodbav:"post_id"`
	UserID             string           `json:"user_id,omitempty" dynamodbav:"user_id"`
	Title              string           `json:"title" dynamodbav:"title"`
	Description        string           `json:"description" dynamodbav:"description"`
	Category           string           `json:"category" dynamodbav:"category"`
	UrgencyLevel       int              `json:"urgency_level" dynamodbav:"urgency_level"`
	PostType           string           `json:"post_type" dynamodbav:"post_type"`
	Location           string           `json:"location" dynamodbav:"location"`
	Coordinates        *RawCoordinates  `json:"coordinates,omitempty" dynamodbav:"coordinates"`
	VisibilityRadiusKm float64          `json:"visibility_radius_km" dynamodbav:"visibility_radius_km"`
	PhotoKeys          []string         `json:"photo_keys,omitempty" dynamodbav:"photo_keys"`
	Duration           string           `json:"duration,omitempty" dynamodbav:"duration"`
	IsAnonymous        bool             `json:"is_anonymous" dynamodbav:"is_anonymous"`
	Responders         []ResponderEntry `json:"responders" dynamodbav:"responders"`
	Enable             bool             `json:"enable" dynamodbav:"enable"`
	CreatedAt          time.Time        `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time        `json:"updated" dynamodbav:"updated_at"`

	// Version is the optimistic-concurrency counter for responder mutations.
	Version int64 `json:"-" dynamodbav:"version"`

	// DistanceKm is computed per request against the caller's location.
	// Never stored.
	DistanceKm *float64 `json:"distance_km,omitempty" dynamodbav:"-"`
}

// HasResponder reports whether userID already appears in the responders list.
func (p *Post) HasResponder(userID string) bool {
	for _, e := range p.Responders {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

type CreatePostRequest struct {
	Title              string          `json:"title" validate:"required"`
	Description        string          `json:"description" validate:"required"`
	Category           string          `json:"category" validate:"required"`
	UrgencyLevel       int             `json:"urgency_level" validate:"required,min=1,max=3"`
	PostType           string          `json:"post_type" validate:"required,oneof=need offer"`
	Location           string          `json:"location"`
	Coordinates        *RawCoordinates `json:"coordinates"`
	VisibilityRadiusKm float64         `json:"visibility_radius_km" validate:"omitempty,gt=0"`
	PhotoKeys          []string        `json:"photo_keys"`
	Duration           string          `json:"duration"`
	IsAnonymous        bool            `json:"is_anonymous"`
}
