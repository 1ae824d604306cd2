package model

import "time"

// SurveyResponse is one feedback submission.
type SurveyResponse struct {
	ID              string    `json:"id"`
	UserType        string    `json:"user_type"`
	WouldUseAgain   string    `json:"would_use_again"`
	PreferOverExcel string    `json:"prefer_over_excel"`
	Feedback        string    `json:"feedback,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Survey answer values.
var (
	SurveyUserTypes       = []string{"event-senior-staff", "event-participant", "requestor-only"}
	SurveyWouldUseAgain   = []string{"yes", "no", "maybe"}
	SurveyPreferOverExcel = []string{"yes", "no", "depends"}
)
