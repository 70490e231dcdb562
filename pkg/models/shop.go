package models

import (
	"time"
)

type DeliverySettings struct {
	OffersDelivery bool `bson:"offers_delivery" json:"offers_delivery"`
	OffersPickup   bool `bson:"offers_pickup" json:"offers_pickup"`
	// MaxDistance is in kilometers.
	MaxDistance           *float64 `bson:"max_distance,omitempty" json:"max_distance,omitempty"`
	DeliveryFee           *float64 `bson:"delivery_fee,omitempty" json:"delivery_fee,omitempty"`
	FreeDeliveryThreshold *float64 `bson:"free_delivery_threshold,omitempty" json:"free_delivery_threshold,omitempty"`
}

type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type Shop struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
	// Slug is the public lookup key. It is unique and immutable after
	// creation.
	Slug             string           `bson:"slug" json:"slug"`
	Description      string           `bson:"description" json:"description"`
	Logo             string           `bson:"logo,omitempty" json:"logo,omitempty"`
	Banner           string           `bson:"banner,omitempty" json:"banner,omitempty"`
	DeliverySettings DeliverySettings `bson:"delivery_settings" json:"delivery_settings"`
	ContactEmail     string           `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	ContactPhone     string           `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	Address          string           `bson:"address,omitempty" json:"address,omitempty"`
	City             string           `bson:"city,omitempty" json:"city,omitempty"`
	State            string           `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode       string           `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country          string           `bson:"country,omitempty" json:"country,omitempty"`
	Location         *GeoPoint        `bson:"location,omitempty" json:"location,omitempty"`
	// AdminIDs is never empty while the shop is active; the last admin
	// cannot be removed.
	AdminIDs  []string  `bson:"admin_ids" json:"admin_ids"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasAdmin reports membership by the shop-side admin set.
func (s *Shop) HasAdmin(userID string) bool {
	for _, id := range s.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
