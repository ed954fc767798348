// Package submission tracks the multi-step collection of a single grievance.
// A submission is created when the initial classification succeeds and is
// discarded once the finished record is persisted. The state is never stored
// independently: it is always recomputed from which fields are present.
package submission

import (
	"strings"

	"grievbot/bot/issue"
)

// State names which piece of data the bot is waiting for next.
type State string

const (
	AwaitingLocation    State = "awaiting_location"
	AwaitingPhoto       State = "awaiting_photo"
	AwaitingExtraDetail State = "awaiting_extra_detail"
	Complete            State = "complete"
)

const (
	// Locations shorter than this are treated as low-confidence placeholders
	// coming out of classification and re-requested from the user.
	minLocationLen = 3

	unknownLocation = "unknown"

	PromptLocation = "I couldn't detect the location clearly. Please send your location."
	PromptPhoto    = "This issue type needs a photo. Please upload one now or skip with /skip_photo."
)

// Submission is one user's in-progress grievance report.
type Submission struct {
	UserID      int64
	Username    string
	Grievance   string
	Issue       string
	Requirement issue.Requirement
	Location    string
	Photo       []byte

	// PhotoDeclined marks an explicit /skip_photo, which is distinct from
	// "not yet provided". Both persist as no photo.
	PhotoDeclined bool

	ExtraDetail string
	State       State
}

// Next computes the state a submission is in and the prompt to send for it.
// It is a pure function of the field presence and the category requirement;
// fields are checked in fixed priority order, and a field once satisfied is
// never re-requested.
func Next(s *Submission) (State, string) {
	loc := strings.TrimSpace(s.Location)
	if loc == "" || strings.EqualFold(loc, unknownLocation) || len([]rune(loc)) < minLocationLen {
		return AwaitingLocation, PromptLocation
	}

	if s.Requirement.PhotoRequired && len(s.Photo) == 0 && !s.PhotoDeclined {
		return AwaitingPhoto, PromptPhoto
	}

	if s.Requirement.ExtraPrompt != "" && s.ExtraDetail == "" {
		return AwaitingExtraDetail, s.Requirement.ExtraPrompt
	}

	return Complete, ""
}

// Advance recomputes the state, stores it on the submission and returns it
// together with the prompt for the new state.
func (s *Submission) Advance() (State, string) {
	state, prompt := Next(s)
	s.State = state
	return state, prompt
}

// HasPhoto reports whether an actual photo was collected (a declined photo
// does not count).
func (s *Submission) HasPhoto() bool {
	return len(s.Photo) > 0
}
