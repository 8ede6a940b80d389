package models

import (
	"time"
)

// Contact is an emergency contact. Owned by the contacts store; the alert
// dispatcher only reads it.
type Contact struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Phone       string    `json:"phone" bson:"phone" validate:"required,min=5,max=20"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Relation    string    `json:"relation" bson:"relation"`
	DeviceToken string    `json:"deviceToken,omitempty" bson:"deviceToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// AddContactRequest creates a contact.
type AddContactRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Phone       string `json:"phone" validate:"required,min=5,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	Relation    string `json:"relation"`
	DeviceToken string `json:"deviceToken"`
}

// UpdateContactRequest patches a contact; empty fields are left unchanged.
type UpdateContactRequest struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone       string `json:"phone" validate:"omitempty,min=5,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	Relation    string `json:"relation"`
	DeviceToken string `json:"deviceToken"`
}
