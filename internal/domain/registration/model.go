package registration

import (
	"errors"
	"time"
)

// Business rule constants
const (
	GenderMale   = "male"
	GenderFemale = "female"

	MaxKidAge = 18
)

// ShirtSizes lists the accepted t-shirt sizes in display order.
var ShirtSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// Domain errors
var (
	ErrDuplicateEmail = errors.New("email is already registered")
	ErrNotFound       = errors.New("registration not found")
)

// Kid is a child the registrant is bringing along.
type Kid struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	TshirtSize string `json:"tshirtSize"`
}

// Spouse is the registrant's partner when they attend.
type Spouse struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	TshirtSize string `json:"tshirtSize"`
}

// Submission is a validated registration as entered by the employee.
// It never carries the identifier or timestamps; those belong to the store.
type Submission struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Department       string `json:"department"`
	Gender           string `json:"gender"`
	ParentTshirtSize string `json:"parentTshirtSize"`

	BringingKids   bool    `json:"bringingKids"`
	NumberOfKids   *int    `json:"numberOfKids,omitempty"`
	Kids           []Kid   `json:"kids,omitempty"`
	BringingSpouse *bool   `json:"bringingSpouse,omitempty"`
	Spouse         *Spouse `json:"spouse,omitempty"`

	EntertainmentSports   []string `json:"entertainmentSports,omitempty"`
	InterestedInCompeting bool     `json:"interestedInCompeting"`
	CompetitiveSports     []string `json:"competitiveSports,omitempty"`

	LastExercise        string   `json:"lastExercise,omitempty"`
	MedicalConditions   []string `json:"medicalConditions"`
	CurrentMedications  string   `json:"currentMedications,omitempty"`
	PreviousInjuries    string   `json:"previousInjuries,omitempty"`
	PhysicalLimitations string   `json:"physicalLimitations,omitempty"`
	HealthConcerns      string   `json:"healthConcerns,omitempty"`

	// Physical activity readiness questionnaire
	HasMedicalConditions *bool `json:"hasMedicalConditions,omitempty"`
	HasHeartCondition    *bool `json:"hasHeartCondition,omitempty"`
	HasChestPain         *bool `json:"hasChestPain,omitempty"`
	HasBalanceIssues     *bool `json:"hasBalanceIssues,omitempty"`

	HasOtherHealthInfo         *bool `json:"hasOtherHealthInfo,omitempty"`
	IsTakingMedications        *bool `json:"isTakingMedications,omitempty"`
	HasImmediateHealthConcerns *bool `json:"hasImmediateHealthConcerns,omitempty"`

	// Declaration
	GuardianName             string `json:"guardianName,omitempty"`
	GuardianSignature        string `json:"guardianSignature,omitempty"`
	EmergencyContactName     string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone    string `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelation string `json:"emergencyContactRelation,omitempty"`
	DoctorClearance          bool   `json:"doctorClearance"`
}

// Registration is a stored submission.
type Registration struct {
	ID string `json:"_id"`
	Submission
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Flag dereferences an optional questionnaire answer; unanswered reads as false.
func Flag(b *bool) bool {
	return b != nil && *b
}
