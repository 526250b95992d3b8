package model

import "time"

// BookingLock is an advisory lock serializing admission attempts on a
// resource. Acquired by inserting a document with a deterministic _id into a
// unique collection; the second writer hits a duplicate key error.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
