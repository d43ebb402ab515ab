package domain

import "time"

// User gender constants.
const (
	GenderFemale = "female"
	GenderMale   = "male"
	GenderNone   = "none"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Nickname     string    `json:"nickname"`
	ProfileImage string    `json:"profileImage"`
	BirthYear    int       `json:"birthYear"`
	Gender       string    `json:"gender"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the public display identity of a user, embedded wherever
// other users need to render a collaborator or comment author.
type Identity struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage"`
}

// Identity returns the user's public display identity.
func (u *User) Identity() Identity {
	return Identity{
		ID:           u.ID,
		Nickname:     u.Nickname,
		ProfileImage: u.ProfileImage,
	}
}

// IsValidGender checks whether the given gender string is one of the
// accepted values.
func IsValidGender(g string) bool {
	return g == GenderFemale || g == GenderMale || g == GenderNone
}
