package models

// PersonRow is the persisted shape of a person card. Sensitive fields hold
// IV:ciphertext envelopes; optional encrypted fields are empty strings when
// absent (stored as NULL). Timestamps are RFC 3339 UTC strings so listings
// can sort without decrypting.
type PersonRow struct {
	ID             string
	FullName       string // encrypted, required
	PreferredName  string // encrypted, optional
	Title          string // encrypted, optional
	Company        string // encrypted, optional
	PhotoURI       string // plaintext, optional
	OneLineContext string // encrypted, optional
	LastMet        string // plaintext RFC 3339, optional
	LinkedContacts string // encrypted JSON
	Privacy        string // encrypted JSON
	Starred        bool
	CreatedAt      string // plaintext RFC 3339
	UpdatedAt      string // plaintext RFC 3339
}

// QuickFactRow is the persisted shape of one quick fact.
type QuickFactRow struct {
	ID       string
	PersonID string
	Label    string // encrypted
	Value    string // encrypted
	Icon     string // plaintext, optional
}

// NoteRow is the persisted shape of one note.
type NoteRow struct {
	ID             string
	PersonID       string
	Date           string // plaintext RFC 3339
	ShortNote      string // encrypted
	MeetingContext string // encrypted, optional
}

// TagRow is the persisted shape of one tag. The row id is the composite
// "{personId}-{tagText}" so duplicate tag text per person cannot exist.
type TagRow struct {
	ID       string
	PersonID string
	Tag      string // encrypted
}
