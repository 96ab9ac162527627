package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project mirrors the bookkeeping application's project registry. This
// service reads it to provision and reconcile folders; it never writes it.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code" validate:"required"`
	Description string             `bson:"description" json:"description"`
	Template    string             `bson:"template" json:"template"` // long, short
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
