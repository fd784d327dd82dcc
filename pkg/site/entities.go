package site

import (
	"strings"
	"time"
)

// User is a site participant.
type User struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Position       string `json:"position,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
}

func (u User) Key() string { return u.ID }

// FullName is "LastName FirstName", skipping missing parts.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.LastName) + " " + strings.TrimSpace(u.FirstName))
}

// Object is a construction site.
type Object struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

func (o Object) Key() string { return o.ID }

// Organization is a contractor or customer.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (o Organization) Key() string { return o.ID }

// Event is a journal entry recording an action on an object.
type Event struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UserID     string    `json:"userId,omitempty"`
	ObjectID   string    `json:"objectId,omitempty"`
	Action     string    `json:"action"`
	ObjectName string    `json:"objectName,omitempty"`
	DocumentID string    `json:"documentId,omitempty"`
}

func (e Event) Key() string { return e.ID }

// Material is a delivery or stock record.
type Material struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId,omitempty"`
	ObjectID  string    `json:"objectId,omitempty"`
	Status    string    `json:"status,omitempty"`
	Quantity  float64   `json:"quantity,omitempty"`
	Unit      string    `json:"unit,omitempty"`
}

func (m Material) Key() string { return m.ID }

// Violation is an inspection finding with a due date.
type Violation struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	Name           string     `json:"name"`
	UserID         string     `json:"userId,omitempty"`
	ObjectID       string     `json:"objectId,omitempty"`
	OrganizationID string     `json:"organizationId,omitempty"`
	Status         string     `json:"status,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
}

func (v Violation) Key() string { return v.ID }

// Visit records someone attending an object.
type Visit struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId,omitempty"`
	ObjectID  string    `json:"objectId,omitempty"`
	Position  string    `json:"position,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

func (v Visit) Key() string { return v.ID }
