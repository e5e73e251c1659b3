// Package stories reads the story content directory that the site renders
// from.
package stories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pevans/coverfetch/frontmatter"
	"gopkg.in/yaml.v3"
)

// ErrStoryNotFound is returned when no file exists for a story id.
var ErrStoryNotFound = errors.New("story not found")

// Extensions are the story file extensions, in lookup preference order.
var Extensions = []string{".mdx", ".md"}

// dateLayouts are the accepted frontmatter date formats.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Story is one story parsed from its file.
type Story struct {
	ID      string
	Title   string
	Summary string
	Date    *time.Time
	Image   string
	Body    string
	Path    string
}

// HasImage reports whether the frontmatter names a cover image.
func (s *Story) HasImage() bool {
	return s.Image != ""
}

// storyFrontmatter is the YAML layout of a story's frontmatter.
type storyFrontmatter struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Date    string `yaml:"date"`
	Image   string `yaml:"image"`
}

// ReadError describes a failure to read a single story file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ListResult contains the stories that were read and any per-file errors.
type ListResult struct {
	Stories []Story
	Errors  []ReadError
}

// Catalogue is a directory of story files.
type Catalogue struct {
	contentDir string
}

// NewCatalogue creates a catalogue over contentDir. The directory is only
// read, never created.
func NewCatalogue(contentDir string) *Catalogue {
	return &Catalogue{contentDir: contentDir}
}

// Dir returns the content directory.
func (c *Catalogue) Dir() string {
	return c.contentDir
}

// List returns every story in the directory, newest first. Stories without
// a date are listed last. Files that fail to parse are collected in the
// result's Errors rather than failing the listing. A non-nil error means the
// directory itself could not be read.
func (c *Catalogue) List() (*ListResult, error) {
	entries, err := os.ReadDir(c.contentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = true
	}

	result := &ListResult{}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !isStoryExt(ext) {
			continue
		}

		// A .mdx file shadows a .md file with the same id
		id := strings.TrimSuffix(entry.Name(), ext)
		if ext == ".md" && names[id+".mdx"] {
			continue
		}

		story, err := readStory(filepath.Join(c.contentDir, entry.Name()), id)
		if err != nil {
			result.Errors = append(result.Errors, ReadError{
				Filename: entry.Name(),
				Err:      err,
			})
			continue
		}

		result.Stories = append(result.Stories, *story)
	}

	sortStories(result.Stories)
	return result, nil
}

// Get returns the story with the given id, or nil when it does not exist.
func (c *Catalogue) Get(id string) (*Story, error) {
	path, err := c.Path(id)
	if err != nil {
		if errors.Is(err, ErrStoryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return readStory(path, id)
}

// Path returns the file backing the story id, or ErrStoryNotFound.
func (c *Catalogue) Path(id string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(c.contentDir, id+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat story file: %w", err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrStoryNotFound, id)
}

func isStoryExt(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func readStory(path, id string) (*Story, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story: %w", err)
	}

	front, body, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}

	var fm storyFrontmatter
	if err := yaml.Unmarshal(front, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return nil, err
	}

	return &Story{
		ID:      id,
		Title:   fm.Title,
		Summary: fm.Summary,
		Date:    date,
		Image:   fm.Image,
		Body:    strings.TrimSpace(string(body)),
		Path:    path,
	}, nil
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

// sortStories orders stories newest first with undated stories last. Equal
// dates keep their existing order.
func sortStories(stories []Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		a, b := stories[i].Date, stories[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
