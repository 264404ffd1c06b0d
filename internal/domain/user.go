package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the root record: account, profile and the embedded assessment.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string             `bson:"email" json:"email"`    // Unique, stored lower-cased
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Profile      Profile            `bson:"profile" json:"profile"`
	Assessment   Assessment         `bson:"assessment" json:"assessment"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	LastActive   time.Time          `bson:"lastActive" json:"lastActive"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile holds the self-described attributes of a user.
type Profile struct {
	Name         string      `bson:"name,omitempty" json:"name,omitempty"`
	Age          *int        `bson:"age,omitempty" json:"age,omitempty"`
	Gender       string      `bson:"gender,omitempty" json:"gender,omitempty"`
	Height       *float64    `bson:"height,omitempty" json:"height,omitempty"` // cm
	Weight       *float64    `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	FitnessLevel string      `bson:"fitnessLevel,omitempty" json:"fitnessLevel,omitempty"`
	Goals        []string    `bson:"goals,omitempty" json:"goals,omitempty"`
	Preferences  Preferences `bson:"preferences" json:"preferences"`
}

type Preferences struct {
	WorkoutTime         string   `bson:"workoutTime,omitempty" json:"workoutTime,omitempty"`
	DietaryRestrictions []string `bson:"dietaryRestrictions,omitempty" json:"dietaryRestrictions,omitempty"`
	AvailableTime       *float64 `bson:"availableTime,omitempty" json:"availableTime,omitempty"` // hours per day
}

// Assessment is only populated once the questionnaire has been submitted.
type Assessment struct {
	Completed         bool       `bson:"completed" json:"completed"`
	Responses         *Responses `bson:"responses,omitempty" json:"responses,omitempty"`
	InitialConfidence int        `bson:"initialConfidence" json:"initialConfidence"`
	CurrentConfidence int        `bson:"currentConfidence" json:"currentConfidence"`
}

// DisplayName falls back to the email when no profile name was given.
func (u *User) DisplayName() string {
	if u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Email
}
