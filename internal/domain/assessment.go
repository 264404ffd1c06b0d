package domain

// Responses are the answers to the fixed questionnaire, keyed by question id.
// Unknown keys in the inbound JSON are dropped.
type Responses struct {
	Goals         []string `bson:"goals,omitempty" json:"goals,omitempty"`
	FitnessLevel  string   `bson:"fitness_level,omitempty" json:"fitness_level,omitempty"`
	AvailableTime string   `bson:"available_time,omitempty" json:"available_time,omitempty"`
	Motivation    string   `bson:"motivation,omitempty" json:"motivation,omitempty"`
	Challenges    []string `bson:"challenges,omitempty" json:"challenges,omitempty"`
	Preferences   string   `bson:"preferences,omitempty" json:"preferences,omitempty"`
	// Self-reported confidence on the 1..10 scale; nil when unanswered.
	Confidence *float64 `bson:"confidence,omitempty" json:"confidence,omitempty" binding:"omitempty,gte=1,lte=10"`
}
