package story

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed story.yaml
var defaultStory []byte

type chapterDef struct {
	ID          int        `yaml:"id" validate:"gt=0"`
	Title       string     `yaml:"title" validate:"required"`
	Description string     `yaml:"description"`
	Entries     []entryDef `yaml:"entries"`
}

type entryDef struct {
	ID      string    `yaml:"id" validate:"required"`
	Title   string    `yaml:"title"`
	Text    string    `yaml:"text" validate:"required"`
	Trigger Condition `yaml:"trigger"`
}

type storyFile struct {
	Chapters []chapterDef `yaml:"chapters"`
}

// CatalogError reports every problem found in a story file.
type CatalogError struct {
	Problems []string
}

func (e *CatalogError) Error() string {
	return "invalid story catalog: " + strings.Join(e.Problems, "; ")
}

var validate = validator.New()

// LoadEntries parses a story file into locked entries, chapter by chapter.
// Entries without a title take their chapter's title.
func LoadEntries(r io.Reader) ([]Entry, error) {
	var f storyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode story catalog: %w", err)
	}

	var problems []string
	seen := make(map[string]bool)
	var out []Entry
	for _, ch := range f.Chapters {
		if err := validate.Struct(ch); err != nil {
			problems = append(problems, fmt.Sprintf("chapter %d: %v", ch.ID, err))
			continue
		}
		for _, d := range ch.Entries {
			if err := validate.Struct(d); err != nil {
				problems = append(problems, fmt.Sprintf("entry %q: %v", d.ID, err))
				continue
			}
			if seen[d.ID] {
				problems = append(problems, fmt.Sprintf("entry %q: duplicate id", d.ID))
				continue
			}
			seen[d.ID] = true
			if d.Trigger.Type == "" {
				problems = append(problems, fmt.Sprintf("entry %q: missing trigger", d.ID))
				continue
			}

			title := d.Title
			if title == "" {
				title = ch.Title
			}
			out = append(out, Entry{
				ID:      d.ID,
				Chapter: ch.ID,
				Title:   title,
				Text:    strings.TrimSpace(d.Text),
				Trigger: d.Trigger,
			})
		}
	}
	if len(problems) > 0 {
		return nil, &CatalogError{Problems: problems}
	}
	return out, nil
}

var (
	defaultOnce    sync.Once
	defaultEntries []Entry
	defaultErr     error
)

// DefaultEntries returns the embedded story. The slice is a fresh copy.
func DefaultEntries() ([]Entry, error) {
	defaultOnce.Do(func() {
		defaultEntries, defaultErr = LoadEntries(bytes.NewReader(defaultStory))
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	out := make([]Entry, len(defaultEntries))
	copy(out, defaultEntries)
	return out, nil
}
