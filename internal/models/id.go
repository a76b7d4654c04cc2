package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh store identifier. Every backend uses the 24-hex
// ObjectID form so identifiers look the same regardless of STORE_DRIVER.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id has the identifier format produced by NewID.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
