package model

import "strings"

// Settings are the runtime options an admin can change without a restart.
type Settings struct {
	EventName     string `json:"event_name"`
	SurveyEnabled bool   `json:"survey_enabled"`
	RequireLogin  bool   `json:"require_login"`
}

// DefaultSettings returns the values used for keys that were never saved.
func DefaultSettings() Settings {
	return Settings{
		EventName:     "Event",
		SurveyEnabled: false,
		RequireLogin:  true,
	}
}

// Normalize trims the event name.
func (s *Settings) Normalize() {
	s.EventName = strings.TrimSpace(s.EventName)
}

// Validate requires a non-empty event name.
func (s Settings) Validate() error {
	if s.EventName == "" {
		return invalid("event_name", "please enter an event name")
	}
	return nil
}
