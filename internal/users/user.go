package users

import "time"

// User is the account row, onboarding answers included. The password hash
// never leaves the package through a View.
type User struct {
	ID           int
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time

	// onboarding
	Goals               []string
	Schedule            string
	Equipment           []string
	ExperienceLevel     string
	OnboardingCompleted bool
}

// View is the JSON projection of a user returned by every endpoint.
type View struct {
	ID                  int       `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	Goals               []string  `json:"goals"`
	Schedule            string    `json:"schedule"`
	Equipment           []string  `json:"equipment"`
	ExperienceLevel     string    `json:"experience_level"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
}

func (u *User) View() View {
	goals := u.Goals
	if goals == nil {
		goals = []string{}
	}
	equipment := u.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return View{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Goals:               goals,
		Schedule:            u.Schedule,
		Equipment:           equipment,
		ExperienceLevel:     u.ExperienceLevel,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
	}
}
