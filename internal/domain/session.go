package domain

import apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"

// SessionStep enumerates the chatbot conversation states. The set is closed:
// a session is either at the greeting or has a tag selected, nothing else.
type SessionStep string

const (
	// StepGreeting is the initial state; no tag has been chosen yet.
	StepGreeting SessionStep = "greeting"

	// StepTagSelected means the user picked a style tag and follow-up
	// requests ("another one") reuse it.
	StepTagSelected SessionStep = "tag_selected"
)

// Session is the chatbot conversation state for one user. SelectedTag is
// meaningful only when Step is StepTagSelected; the constructors keep the
// two fields consistent.
type Session struct {
	UserID      string      `json:"user_id"`
	Step        SessionStep `json:"step"`
	SelectedTag string      `json:"selected_tag,omitempty"`
}

// NewGreetingSession returns a session at the initial step.
func NewGreetingSession(userID string) Session {
	return Session{UserID: userID, Step: StepGreeting}
}

// NewTagSelectedSession returns a session with the given tag selected.
func NewTagSelectedSession(userID, tag string) (Session, error) {
	if tag == "" {
		return Session{}, apperrors.InvalidInput("selected tag must not be empty")
	}
	return Session{UserID: userID, Step: StepTagSelected, SelectedTag: tag}, nil
}

// Validate checks the step/tag consistency of a session loaded from storage.
func (s Session) Validate() error {
	switch s.Step {
	case StepGreeting:
		if s.SelectedTag != "" {
			return apperrors.InvalidInput("greeting session must not carry a tag")
		}
	case StepTagSelected:
		if s.SelectedTag == "" {
			return apperrors.InvalidInput("tag_selected session requires a tag")
		}
	default:
		return apperrors.InvalidInput("unknown session step " + string(s.Step))
	}
	return nil
}
