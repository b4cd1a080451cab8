package model

import "time"

// Voice is a text-to-speech voice available to users.
type Voice struct {
	ID       string `json:"voice_id" yaml:"id"`
	Name     string `json:"voice_name" yaml:"name"`
	Provider string `json:"provider" yaml:"provider"`
	Language string `json:"language" yaml:"language"`
	Gender   string `json:"gender" yaml:"gender"`
	Active   bool   `json:"is_active" yaml:"active"`
}

// VoicePreference is a user's chosen voice and playback settings.
type VoicePreference struct {
	UserID    string    `json:"user_id"`
	VoiceID   string    `json:"voice_id"`
	Provider  string    `json:"provider"`
	Speed     float64   `json:"speed"`
	AutoPlay  bool      `json:"auto_play"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultVoicePreference is returned for users who never set a preference.
func DefaultVoicePreference(userID string) *VoicePreference {
	return &VoicePreference{
		UserID:   userID,
		VoiceID:  "eleanor",
		Provider: "unreal-speech",
		Speed:    1.0,
		AutoPlay: true,
	}
}
