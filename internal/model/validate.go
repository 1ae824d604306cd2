package model

import (
	"net/mail"
	"slices"
	"strings"
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Normalize trims surrounding whitespace from the text fields.
func (r *RequestItem) Normalize() {
	r.ItemName = strings.TrimSpace(r.ItemName)
	r.Custodian = strings.TrimSpace(r.Custodian)
	r.Location = strings.TrimSpace(r.Location)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate checks a request as submitted by a requester. Everything except
// the phone number is mandatory.
func (r RequestItem) Validate() error {
	switch {
	case r.ItemName == "":
		return invalid("item_name", "item name is required")
	case r.Requested < 1:
		return invalid("requested", "quantity must be at least 1")
	case r.Custodian == "":
		return invalid("custodian", "custodian is required")
	case r.Location == "":
		return invalid("location", "location is required")
	case !validEmail(r.Email):
		return invalid("email", "valid email is required")
	}
	return nil
}

// Normalize trims surrounding whitespace from the text fields.
func (it *InventoryItem) Normalize() {
	it.ItemName = strings.TrimSpace(it.ItemName)
	it.Custodian = strings.TrimSpace(it.Custodian)
	it.Location = strings.TrimSpace(it.Location)
	it.Email = strings.TrimSpace(it.Email)
	it.Phone = strings.TrimSpace(it.Phone)
}

// ValidateNew checks an item added directly by an admin. Contact fields
// are optional but a given email must be well formed.
func (it InventoryItem) ValidateNew() error {
	switch {
	case it.ItemName == "":
		return invalid("item_name", "item name is required")
	case it.Requested < 1:
		return invalid("requested", "requested quantity must be at least 1")
	case it.OnHand < 0:
		return invalid("on_hand", "on hand quantity cannot be negative")
	case it.Email != "" && !validEmail(it.Email):
		return invalid("email", "must be a valid email")
	}
	return nil
}

// Normalize trims surrounding whitespace from the text fields.
func (e *ItemEdit) Normalize() {
	e.ItemName = strings.TrimSpace(e.ItemName)
	e.Custodian = strings.TrimSpace(e.Custodian)
	e.Location = strings.TrimSpace(e.Location)
	e.Email = strings.TrimSpace(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
}

// Validate only requires a name and non-negative quantities; an edit may
// move an item into any status.
func (e ItemEdit) Validate() error {
	switch {
	case e.ItemName == "":
		return invalid("item_name", "item name is required")
	case e.Requested < 0:
		return invalid("requested", "quantity cannot be negative")
	case e.OnHand < 0:
		return invalid("on_hand", "quantity cannot be negative")
	case e.Received < 0:
		return invalid("received", "quantity cannot be negative")
	}
	return nil
}

// Normalize trims the free-text feedback.
func (s *SurveyResponse) Normalize() {
	s.Feedback = strings.TrimSpace(s.Feedback)
}

// Validate checks that every enumerated answer is one of the offered options.
func (s SurveyResponse) Validate() error {
	switch {
	case !slices.Contains(SurveyUserTypes, s.UserType):
		return invalid("user_type", "please select your user type")
	case !slices.Contains(SurveyWouldUseAgain, s.WouldUseAgain):
		return invalid("would_use_again", "please answer this question")
	case !slices.Contains(SurveyPreferOverExcel, s.PreferOverExcel):
		return invalid("prefer_over_excel", "please answer this question")
	}
	return nil
}
