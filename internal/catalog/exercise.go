package catalog

// Exercise is reference data seeded at startup, read-only at runtime.
type Exercise struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"` // push, pull, legs, upper, lower
	MuscleGroups    []string `json:"muscle_groups"`
	EquipmentNeeded []string `json:"equipment_needed"`
	Instructions    string   `json:"instructions,omitempty"`
}

// WorkoutTemplate is a named ordered prescription of exercises,
// not tied to any single user.
type WorkoutTemplate struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Type        string             `json:"type"` // upper_lower, push_pull_legs
	Description string             `json:"description"`
	Exercises   []TemplateExercise `json:"exercises"`
}

// TemplateExercise serializes with its full nested exercise, the API never
// returns bare exercise ids inside a template.
type TemplateExercise struct {
	ID        int      `json:"id"`
	Exercise  Exercise `json:"exercise"`
	Sets      int      `json:"sets"`
	RepsRange string   `json:"reps_range"`
	Order     int      `json:"order"`
}
