package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

// argOrPrompt returns the joined args when present, otherwise prompts.
func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// Add interactively collects a new person card and persists it.
func (a *App) Add(ctx context.Context) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	fullName, err := getSimpleText(a.reader, "Full name (required)", a.out)
	if err != nil {
		return err
	}
	preferred, err := getSimpleText(a.reader, "Preferred name (optional)", a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title (optional)", a.out)
	if err != nil {
		return err
	}
	company, err := getSimpleText(a.reader, "Company (optional)", a.out)
	if err != nil {
		return err
	}
	oneLine, err := getSimpleText(a.reader, "One-line context (optional)", a.out)
	if err != nil {
		return err
	}
	tagsLine, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}
	facts, err := a.getQuickFacts()
	if err != nil {
		return err
	}

	p := &models.Person{
		ID:             uuid.NewString(),
		FullName:       fullName,
		PreferredName:  preferred,
		Title:          title,
		Company:        company,
		OneLineContext: oneLine,
		Tags:           splitTags(tagsLine),
		QuickFacts:     facts,
	}

	if err := eng.AddPerson(ctx, p); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added %s (%s)\n", p.FullName, p.ID)
	return nil
}

// Edit re-prompts the card fields; pressing Enter keeps the current value.
// Quick facts and tags are replaced only when new values are entered.
func (a *App) Edit(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	id, err := a.argOrPrompt(args, "Person id")
	if err != nil {
		return err
	}
	p, err := eng.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no person with id %s", id)
	}

	prompts := []struct {
		label string
		field *string
	}{
		{"Full name", &p.FullName},
		{"Preferred name", &p.PreferredName},
		{"Title", &p.Title},
		{"Company", &p.Company},
		{"One-line context", &p.OneLineContext},
	}
	for _, pr := range prompts {
		value, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", pr.label, *pr.field), a.out)
		if err != nil {
			return err
		}
		if value != "" {
			*pr.field = value
		}
	}

	tagsLine, err := getSimpleText(a.reader,
		fmt.Sprintf("Tags, comma separated [%s]", strings.Join(p.Tags, ", ")), a.out)
	if err != nil {
		return err
	}
	if tagsLine != "" {
		p.Tags = splitTags(tagsLine)
	}

	if err := eng.UpdatePerson(ctx, p); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Updated.")
	return nil
}

// List prints every card, newest-first.
func (a *App) List(ctx context.Context) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}
	people, err := eng.GetAllPeople(ctx, 0)
	if err != nil {
		return err
	}
	a.printPeople(people)
	return nil
}

// Starred prints starred cards only.
func (a *App) Starred(ctx context.Context) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}
	people, err := eng.GetStarredPeople(ctx)
	if err != nil {
		return err
	}
	a.printPeople(people)
	return nil
}

// Search runs a substring search across names, title, company, tags and
// quick-fact values.
func (a *App) Search(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	query, err := a.argOrPrompt(args, "Search for")
	if err != nil {
		return err
	}

	people, err := eng.SearchPeople(ctx, query)
	if err != nil {
		return err
	}
	a.printPeople(people)
	return nil
}

// Show prints the whole card, including quick facts and notes.
func (a *App) Show(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	id, err := a.argOrPrompt(args, "Person id")
	if err != nil {
		return err
	}
	p, err := eng.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no person with id %s", id)
	}

	star := " "
	if p.Starred {
		star = "*"
	}
	fmt.Fprintf(a.out, "%s %s (%s)\n", star, p.FullName, p.ID)
	if p.PreferredName != "" {
		fmt.Fprintf(a.out, "  Preferred: %s\n", p.PreferredName)
	}
	if p.Title != "" || p.Company != "" {
		fmt.Fprintf(a.out, "  %s, %s\n", p.Title, p.Company)
	}
	if p.OneLineContext != "" {
		fmt.Fprintf(a.out, "  %s\n", p.OneLineContext)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(a.out, "  Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	for _, f := range p.QuickFacts {
		fmt.Fprintf(a.out, "  %s: %s\n", f.Label, f.Value)
	}

	notes, err := eng.GetNotes(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(notes) > 0 {
		fmt.Fprintln(a.out, "  Notes:")
		for _, n := range notes {
			fmt.Fprintf(a.out, "    %s  %s\n", n.Date.Format("2006-01-02"), n.ShortNote)
		}
	}
	return nil
}

// Star toggles the starred flag.
func (a *App) Star(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	id, err := a.argOrPrompt(args, "Person id")
	if err != nil {
		return err
	}
	p, err := eng.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no person with id %s", id)
	}

	p.Starred = !p.Starred
	if err := eng.UpdatePerson(ctx, p); err != nil {
		return err
	}

	if p.Starred {
		fmt.Fprintf(a.out, "Starred %s\n", p.FullName)
	} else {
		fmt.Fprintf(a.out, "Unstarred %s\n", p.FullName)
	}
	return nil
}

// Delete removes the card and everything attached to it after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	eng, err := a.requireUnlocked()
	if err != nil {
		return err
	}

	id, err := a.argOrPrompt(args, "Person id")
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s and all their notes? Type YES to confirm", id), a.out)
	if err != nil {
		return err
	}
	if answer != "YES" {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	if err := eng.DeletePerson(ctx, id); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// getQuickFacts prompts for "label=value" lines, ending on an empty line.
func (a *App) getQuickFacts() ([]models.QuickFact, error) {
	fmt.Fprintln(a.out, "Quick facts in the format label=value (empty line to finish)")

	var facts []models.QuickFact
	for {
		line, _ := a.reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		label, value, found := strings.Cut(line, "=")
		if !found {
			fmt.Fprintln(a.out, "Expected label=value, got:", line)
			continue
		}
		facts = append(facts, models.QuickFact{
			ID:    uuid.NewString(),
			Label: strings.TrimSpace(label),
			Value: strings.TrimSpace(value),
		})
	}
	return facts, nil
}

func (a *App) printPeople(people []models.Person) {
	if len(people) == 0 {
		fmt.Fprintln(a.out, "Nothing found.")
		return
	}
	for _, p := range people {
		star := " "
		if p.Starred {
			star = "*"
		}
		line := fmt.Sprintf("%s %s", star, p.FullName)
		if p.Company != "" {
			line += fmt.Sprintf(" (%s)", p.Company)
		}
		fmt.Fprintf(a.out, "%s  [%s]\n", line, p.ID)
	}
}

func splitTags(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
