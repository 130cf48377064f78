package profile

import "time"

// Field limits, in characters.
const (
	MaxNameLength     = 100
	MaxDietaryLength  = 200
	MaxFreeTextLength = 300
)

const (
	genderMale   = "Male"
	genderFemale = "Female"
	genderOther  = "Other"
)

// Error codes surfaced to the HTTP layer.
const (
	CodeInvalidInput = "invalid_input"
	CodeProfileError = "profile_error"
)

// HealthProfile is the single personalization record kept per user.
type HealthProfile struct {
	UserID             int64     `json:"-"`
	Name               string    `json:"name"`
	Age                int       `json:"age"`
	Gender             string    `json:"gender"`
	Height             float64   `json:"height"`
	Weight             float64   `json:"weight"`
	DietaryPreferences string    `json:"dietary_preferences"`
	Allergies          string    `json:"allergies"`
	MedicalConditions  string    `json:"medical_conditions"`
	LifestyleHabits    string    `json:"lifestyle_habits"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SaveRequest is the profile form.
type SaveRequest struct {
	Name               string  `json:"name"`
	Age                int     `json:"age"`
	Gender             string  `json:"gender"`
	Height             float64 `json:"height"`
	Weight             float64 `json:"weight"`
	DietaryPreferences string  `json:"dietary_preferences"`
	Allergies          string  `json:"allergies"`
	MedicalConditions  string  `json:"medical_conditions"`
	LifestyleHabits    string  `json:"lifestyle_habits"`
}

// Attributes returns the snapshot fed to the prompt formatter. Empty optional
// fields are left out.
func (p HealthProfile) Attributes() map[string]any {
	attrs := map[string]any{
		"name":   p.Name,
		"age":    p.Age,
		"gender": p.Gender,
		"height": p.Height,
		"weight": p.Weight,
	}
	optional := map[string]string{
		"dietary_preferences": p.DietaryPreferences,
		"allergies":           p.Allergies,
		"medical_conditions":  p.MedicalConditions,
		"lifestyle_habits":    p.LifestyleHabits,
	}
	for k, v := range optional {
		if v != "" {
			attrs[k] = v
		}
	}
	return attrs
}
