package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/rememberme/internal/cryptox"
	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/repositories/repomanager"
)

// Every sensitive field is encrypted individually, each with its own fresh
// IV, so ciphertexts across fields are never correlated and a consumer can
// decrypt only the fields it needs.

func (e *Engine) encryptField(plaintext string) (string, error) {
	return cryptox.Encrypt(plaintext, e.key)
}

// encryptOptional keeps absent values absent: "" maps to "" (stored NULL).
func (e *Engine) encryptOptional(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return e.encryptField(plaintext)
}

func (e *Engine) decryptField(envelope string) (string, error) {
	return cryptox.Decrypt(envelope, e.key)
}

func (e *Engine) decryptOptional(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}
	return e.decryptField(envelope)
}

func (e *Engine) encryptJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return e.encryptField(string(data))
}

func (e *Engine) decryptJSON(envelope string, v any) error {
	plaintext, err := e.decryptField(envelope)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(plaintext), v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

func (e *Engine) encryptPerson(p *models.Person) (*models.PersonRow, error) {
	row := &models.PersonRow{
		ID:        p.ID,
		PhotoURI:  p.PhotoURI,
		Starred:   p.Starred,
		CreatedAt: models.FormatTime(p.CreatedAt),
		UpdatedAt: models.FormatTime(p.UpdatedAt),
	}
	if p.LastMet != nil {
		row.LastMet = models.FormatTime(*p.LastMet)
	}

	var err error
	if row.FullName, err = e.encryptField(p.FullName); err != nil {
		return nil, err
	}
	if row.PreferredName, err = e.encryptOptional(p.PreferredName); err != nil {
		return nil, err
	}
	if row.Title, err = e.encryptOptional(p.Title); err != nil {
		return nil, err
	}
	if row.Company, err = e.encryptOptional(p.Company); err != nil {
		return nil, err
	}
	if row.OneLineContext, err = e.encryptOptional(p.OneLineContext); err != nil {
		return nil, err
	}
	if row.LinkedContacts, err = e.encryptJSON(p.LinkedContacts); err != nil {
		return nil, err
	}
	if row.Privacy, err = e.encryptJSON(p.Privacy); err != nil {
		return nil, err
	}
	return row, nil
}

// encryptSubEntities builds the quick-fact and tag rows for a person whose
// Tags have already been normalized.
func (e *Engine) encryptSubEntities(p *models.Person) ([]models.QuickFactRow, []models.TagRow, error) {
	factRows := make([]models.QuickFactRow, 0, len(p.QuickFacts))
	for _, fact := range p.QuickFacts {
		label, err := e.encryptField(fact.Label)
		if err != nil {
			return nil, nil, err
		}
		value, err := e.encryptField(fact.Value)
		if err != nil {
			return nil, nil, err
		}
		factRows = append(factRows, models.QuickFactRow{
			ID:       fact.ID,
			PersonID: p.ID,
			Label:    label,
			Value:    value,
			Icon:     fact.Icon,
		})
	}

	tagRows := make([]models.TagRow, 0, len(p.Tags))
	for _, tag := range p.Tags {
		encrypted, err := e.encryptField(tag)
		if err != nil {
			return nil, nil, err
		}
		tagRows = append(tagRows, models.TagRow{
			ID:       p.ID + "-" + tag,
			PersonID: p.ID,
			Tag:      encrypted,
		})
	}
	return factRows, tagRows, nil
}

func (e *Engine) encryptNote(personID string, note *models.Note) (*models.NoteRow, error) {
	shortNote, err := e.encryptField(note.ShortNote)
	if err != nil {
		return nil, err
	}
	meetingContext, err := e.encryptOptional(note.MeetingContext)
	if err != nil {
		return nil, err
	}
	return &models.NoteRow{
		ID:             note.ID,
		PersonID:       personID,
		Date:           models.FormatTime(note.Date),
		ShortNote:      shortNote,
		MeetingContext: meetingContext,
	}, nil
}

func (e *Engine) decryptNote(row *models.NoteRow) (*models.Note, error) {
	date, err := models.ParseTime(row.Date)
	if err != nil {
		return nil, fmt.Errorf("parse note date: %w", err)
	}
	shortNote, err := e.decryptField(row.ShortNote)
	if err != nil {
		return nil, err
	}
	meetingContext, err := e.decryptOptional(row.MeetingContext)
	if err != nil {
		return nil, err
	}
	return &models.Note{
		ID:             row.ID,
		Date:           date,
		ShortNote:      shortNote,
		MeetingContext: meetingContext,
	}, nil
}

// assemblePerson decrypts the person row and joins in its quick facts and
// tags. Notes stay empty here; they are loaded only via GetNotes.
func (e *Engine) assemblePerson(ctx context.Context, r repomanager.Repositories, row *models.PersonRow) (*models.Person, error) {
	p := &models.Person{
		ID:       row.ID,
		PhotoURI: row.PhotoURI,
		Starred:  row.Starred,
	}

	var err error
	if p.FullName, err = e.decryptField(row.FullName); err != nil {
		return nil, err
	}
	if p.PreferredName, err = e.decryptOptional(row.PreferredName); err != nil {
		return nil, err
	}
	if p.Title, err = e.decryptOptional(row.Title); err != nil {
		return nil, err
	}
	if p.Company, err = e.decryptOptional(row.Company); err != nil {
		return nil, err
	}
	if p.OneLineContext, err = e.decryptOptional(row.OneLineContext); err != nil {
		return nil, err
	}
	if err = e.decryptJSON(row.LinkedContacts, &p.LinkedContacts); err != nil {
		return nil, err
	}
	if err = e.decryptJSON(row.Privacy, &p.Privacy); err != nil {
		return nil, err
	}
	if p.Privacy.SharedWith == nil {
		p.Privacy.SharedWith = []string{}
	}

	if p.CreatedAt, err = models.ParseTime(row.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse createdAt: %w", err)
	}
	if p.UpdatedAt, err = models.ParseTime(row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updatedAt: %w", err)
	}
	if row.LastMet != "" {
		lastMet, err := models.ParseTime(row.LastMet)
		if err != nil {
			return nil, fmt.Errorf("parse lastMet: %w", err)
		}
		p.LastMet = &lastMet
	}

	factRows, err := r.QuickFacts().GetByPerson(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	p.QuickFacts = make([]models.QuickFact, 0, len(factRows))
	for _, factRow := range factRows {
		label, err := e.decryptField(factRow.Label)
		if err != nil {
			return nil, err
		}
		value, err := e.decryptField(factRow.Value)
		if err != nil {
			return nil, err
		}
		p.QuickFacts = append(p.QuickFacts, models.QuickFact{
			ID:    factRow.ID,
			Label: label,
			Value: value,
			Icon:  factRow.Icon,
		})
	}

	tagRows, err := r.Tags().GetByPerson(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = make([]string, 0, len(tagRows))
	for _, tagRow := range tagRows {
		tag, err := e.decryptField(tagRow.Tag)
		if err != nil {
			return nil, err
		}
		p.Tags = append(p.Tags, tag)
	}

	p.Notes = []models.Note{}
	return p, nil
}
