// Package tourquest defines the core domain types for tours and stops.
// It has no dependencies beyond the standard library.
package tourquest

import "time"

// Tour is a named collection of ordered stops forming one
// scavenger-hunt experience.
type Tour struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Theme       string    `json:"theme"`
	CoverImage  *string   `json:"cover_image"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stop is a single waypoint in a tour: narrative content plus an
// optional verification challenge the player must pass to advance.
type Stop struct {
	ID               string           `json:"id"`
	TourID           string           `json:"tour_id"`
	StopNumber       int              `json:"stop_number"`
	Name             string           `json:"name"`
	Address          string           `json:"address"`
	StoryText        string           `json:"story_text"`
	Instructions     string           `json:"instructions"`
	MenuItems        []string         `json:"menu_items"`
	Tips             []string         `json:"tips"`
	VerificationType VerificationType `json:"verification_type"`
	Password         string           `json:"password"`
	Options          []string         `json:"options,omitempty"`
	CorrectAnswer    string           `json:"correct_answer,omitempty"`
	IsInfoOnly       bool             `json:"is_info_only"`
	MediaType        MediaType        `json:"media_type,omitempty"`
	BackgroundImage  *string          `json:"background_image"`
	FailuresAllowed  int              `json:"failures_allowed"`
	AutoShowHint     bool             `json:"auto_show_hint"`
	EnableSkip       bool             `json:"enable_skip"`
	GPSLat           *float64         `json:"gps_lat"`
	GPSLng           *float64         `json:"gps_lng"`
	GPSRadius        int              `json:"gps_radius"`
	ImageURL         *string          `json:"image_url"`
	TransitionText   string           `json:"transition_text"`
	NextStopPreview  string           `json:"next_stop_preview"`
	CreatedAt        time.Time        `json:"created_at"`
}

// VerificationType is the method by which a player proves completion
// of a stop.
type VerificationType string

const (
	VerificationText           VerificationType = "text"
	VerificationMultipleChoice VerificationType = "multiple_choice"
	VerificationGPS            VerificationType = "gps"
	VerificationPhoto          VerificationType = "photo"
)

// Valid reports whether v is one of the known verification types.
func (v VerificationType) Valid() bool {
	switch v {
	case VerificationText, VerificationMultipleChoice, VerificationGPS, VerificationPhoto:
		return true
	}
	return false
}

// MediaType selects how a stop's media asset is rendered.
type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaVideo   MediaType = "video"
	MediaYouTube MediaType = "youtube"
)

const (
	// DefaultFailuresAllowed is the number of wrong answers a player
	// gets before the skip affordance unlocks.
	DefaultFailuresAllowed = 2

	// DefaultGPSRadius is the geofence radius in meters for new stops.
	DefaultGPSRadius = 50
)
