package models

import "time"

// GenderPolicy values for a batch.
const (
	GenderPolicyAny    = "ANY"
	GenderPolicyMale   = "MALE"
	GenderPolicyFemale = "FEMALE"
)

// BatchPricing holds the per-participant fee structure of a batch.
type BatchPricing struct {
	AdmissionFee    float64 `bson:"admission_fee" json:"admissionFee"`
	BasePrice       float64 `bson:"base_price" json:"basePrice"`
	DiscountedPrice float64 `bson:"discounted_price,omitempty" json:"discountedPrice,omitempty"`
}

// BatchCapacity is the enrollment ceiling for a batch. Max 0 means unlimited.
type BatchCapacity struct {
	Max int `bson:"max,omitempty" json:"max,omitempty"`
}

// Batch is a scheduled offering run by an academy.
type Batch struct {
	ID              string        `bson:"id" json:"id"`
	AcademyID       string        `bson:"academy_id" json:"academyId"`
	Name            string        `bson:"name" json:"name"`
	Sport           string        `bson:"sport" json:"sport"`
	Pricing         BatchPricing  `bson:"pricing" json:"pricing"`
	Capacity        BatchCapacity `bson:"capacity" json:"capacity"`
	MinAge          int           `bson:"min_age,omitempty" json:"minAge,omitempty"`
	MaxAge          int           `bson:"max_age,omitempty" json:"maxAge,omitempty"`
	GenderPolicy    string        `bson:"gender_policy" json:"genderPolicy"`
	AllowDisability bool          `bson:"allow_disability" json:"allowDisability"`
	Active          bool          `bson:"active" json:"active"`
	CreatedAt       time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Academy is the service provider receiving payouts.
type Academy struct {
	ID                string    `bson:"id" json:"id"`
	UserID            string    `bson:"user_id" json:"userId"`
	Name              string    `bson:"name" json:"name"`
	RazorpayAccountID string    `bson:"razorpay_account_id,omitempty" json:"razorpayAccountId,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt"`
}

// Participant is a person enrolled through a booking, owned by the booking user.
type Participant struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"user_id" json:"userId"`
	Name        string    `bson:"name" json:"name"`
	Gender      string    `bson:"gender" json:"gender"`
	DateOfBirth time.Time `bson:"date_of_birth" json:"dateOfBirth"`
	Disability  bool      `bson:"disability" json:"disability"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
