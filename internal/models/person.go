// Package models defines the domain types of the person-card store and the
// storage row types that repositories persist. Domain types carry plaintext;
// row types carry ciphertext envelopes for every sensitive field.
package models

import "time"

// Person is the aggregate root: one memory card about one contact.
//
// Notes are loaded lazily through the engine's GetNotes and are left empty
// by lookup and listing operations.
type Person struct {
	ID             string
	FullName       string
	PreferredName  string
	Title          string
	Company        string
	PhotoURI       string // local file reference, not sensitive
	OneLineContext string
	QuickFacts     []QuickFact
	Tags           []string // lowercase, unique per person
	LastMet        *time.Time
	Notes          []Note
	LinkedContacts LinkedContacts
	Privacy        PrivacySettings
	Starred        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LinkedContacts groups optional contact links, stored as one encrypted
// JSON blob.
type LinkedContacts struct {
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedinURL,omitempty"`
}

// PrivacySettings records who the card may be shared with and whether the
// contact consented. Stored as one encrypted JSON blob.
type PrivacySettings struct {
	SharedWith   []string   `json:"sharedWith"`
	ConsentGiven bool       `json:"consentGiven"`
	ConsentDate  *time.Time `json:"consentDate,omitempty"`
}

// QuickFact is a short labeled memory aid attached to a Person. It has no
// lifecycle of its own: the whole list is replaced on every person update.
type QuickFact struct {
	ID    string
	Label string
	Value string
	Icon  string // symbolic UI name, not sensitive
}

// Note is an append-only meeting note attached to a Person.
type Note struct {
	ID             string
	Date           time.Time
	ShortNote      string
	MeetingContext string
}
