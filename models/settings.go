package models

import "time"

// FeeSettings is the global fee/commission configuration. The commission rate
// is stored as a percentage (0-100) by the admin panel; pricing normalizes it
// to [0,1] and snapshots it onto the booking at calculation time.
type FeeSettings struct {
	PlatformFee    float64   `bson:"platform_fee" json:"platformFee"`
	GSTPercent     float64   `bson:"gst_percent" json:"gstPercent"`
	GSTEnabled     bool      `bson:"gst_enabled" json:"gstEnabled"`
	CommissionRate float64   `bson:"commission_rate" json:"commissionRate"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}
