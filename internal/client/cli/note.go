package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

// AddNote appends an interaction note to an existing person.
func (a *App) AddNote(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	id, err := a.argOrPrompt(args, "Person id")
	if err != nil {
		return err
	}

	text, err := GetMultiline(a.reader, "Note text (double Enter to finish):", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("note text is required")
	}

	meetingContext, err := getSimpleText(a.reader, "Meeting context (optional)", a.out)
	if err != nil {
		return err
	}

	note := &models.Note{
		ID:             uuid.NewString(),
		ShortNote:      text,
		MeetingContext: meetingContext,
	}
	if err := eng.AddNote(ctx, id, note); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Note added.")
	return nil
}

// Notes lists a person's notes, newest-first.
func (a *App) Notes(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	id, err := a.argOrPrompt(args, "Person id")
	if err != nil {
		return err
	}

	notes, err := eng.GetNotes(ctx, id)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notes yet.")
		return nil
	}

	for _, n := range notes {
		fmt.Fprintf(a.out, "%s  %s\n", n.Date.Format("2006-01-02 15:04"), n.ShortNote)
		if n.MeetingContext != "" {
			fmt.Fprintf(a.out, "          (%s)\n", n.MeetingContext)
		}
	}
	return nil
}
