// Package prompts holds the workshop exercise catalog and renders each
// exercise's prompt from its mustache template.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/cbroglie/mustache"
	"gopkg.in/yaml.v3"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/sections"
)

//go:embed catalog.yaml templates/*.mustache
var embedded embed.FS

var (
	// ErrUnknownExercise is returned for an id missing from the catalog.
	ErrUnknownExercise = errors.New("unknown exercise")
	// ErrMissingField is returned when a required field is blank.
	ErrMissingField = errors.New("missing required field")
	// ErrLocalExercise is returned when requesting a completion for an
	// exercise that is rendered locally only.
	ErrLocalExercise = errors.New("exercise does not call the model")
)

// Field is one user input of an exercise.
type Field struct {
	Name      string `yaml:"name"`
	Label     string `yaml:"label"`
	Required  bool   `yaml:"required"`
	Multiline bool   `yaml:"multiline"`
}

// Exercise is one workshop page expressed as data.
type Exercise struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Description  string            `yaml:"description"`
	Model        string            `yaml:"model"`
	Temperature  *float64          `yaml:"temperature"`
	SystemPrompt string            `yaml:"systemPrompt"`
	Template     string            `yaml:"template"`
	Input        string            `yaml:"input"`
	Versioned    bool              `yaml:"versioned"`
	Local        bool              `yaml:"local"`
	Fields       []Field           `yaml:"fields"`
	Markers      []sections.Marker `yaml:"markers"`

	tmpl *mustache.Template
}

type catalogFile struct {
	Exercises []*Exercise `yaml:"exercises"`
}

// Catalog is the ordered set of exercises.
type Catalog struct {
	exercises []*Exercise
	byID      map[string]*Exercise
}

// Load reads the embedded catalog.
func Load() (*Catalog, error) {
	return LoadFS(embedded)
}

// LoadFS reads catalog.yaml and templates/ from fsys and parses every template.
func LoadFS(fsys fs.ReadFileFS) (*Catalog, error) {
	raw, err := fsys.ReadFile("catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err = yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	partials := &fsPartialProvider{fs: fsys}
	catalog := &Catalog{byID: make(map[string]*Exercise, len(file.Exercises))}

	for _, exercise := range file.Exercises {
		if exercise.ID == "" {
			return nil, errors.New("exercise without id in catalog")
		}
		if _, dup := catalog.byID[exercise.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise %s", exercise.ID)
		}

		source, readErr := partials.Get(exercise.Template)
		if readErr != nil {
			return nil, fmt.Errorf("exercise %s: %w", exercise.ID, readErr)
		}

		exercise.tmpl, err = mustache.ParseStringPartials(source, partials)
		if err != nil {
			return nil, fmt.Errorf("exercise %s: failed to parse template: %w", exercise.ID, err)
		}

		catalog.exercises = append(catalog.exercises, exercise)
		catalog.byID[exercise.ID] = exercise
	}

	return catalog, nil
}

// List returns the exercises in catalog order.
func (c *Catalog) List() []*Exercise {
	out := make([]*Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Get returns the exercise with the given id.
func (c *Catalog) Get(id string) (*Exercise, error) {
	exercise, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	return exercise, nil
}

// Render fills the template. Every declared field is present in the template
// data, blank when unset. Versioned exercises read "version" (default 1) and
// expose "first" to the template.
func (e *Exercise) Render(values map[string]string) (string, error) {
	data := make(map[string]any, len(values)+2)
	for key, value := range values {
		data[key] = strings.TrimSpace(value)
	}

	for _, field := range e.Fields {
		value, _ := data[field.Name].(string)
		if field.Required && value == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingField, field.Name)
		}
		if _, set := data[field.Name]; !set {
			data[field.Name] = ""
		}
	}

	if e.Versioned {
		version := 1
		if raw, _ := data["version"].(string); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				return "", fmt.Errorf("invalid version %q", raw)
			}
			version = parsed
		}
		data["version"] = version
		data["first"] = version == 1
	}

	rendered, err := e.tmpl.Render(data)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", e.ID, err)
	}

	return strings.TrimSpace(rendered), nil
}

// Request renders the prompt and wraps it with the exercise's model settings.
func (e *Exercise) Request(values map[string]string) (*domain.CompletionRequest, error) {
	if e.Local {
		return nil, fmt.Errorf("%w: %s", ErrLocalExercise, e.ID)
	}

	prompt, err := e.Render(values)
	if err != nil {
		return nil, err
	}

	return &domain.CompletionRequest{
		UserPrompt:   prompt,
		SystemPrompt: e.SystemPrompt,
		Model:        e.Model,
		Temperature:  e.Temperature,
	}, nil
}

// Builder returns a prompt builder that places the submitted input into the
// exercise's input field on top of fixed values. Versioned exercises take
// the version passed to the builder unless fixed sets "version".
func (e *Exercise) Builder(fixed map[string]string) func(input string, version int) (*domain.CompletionRequest, error) {
	return func(input string, version int) (*domain.CompletionRequest, error) {
		values := make(map[string]string, len(fixed)+2)
		for key, value := range fixed {
			values[key] = value
		}
		values[e.Input] = input
		if _, set := values["version"]; e.Versioned && !set && version > 0 {
			values["version"] = strconv.Itoa(version)
		}
		return e.Request(values)
	}
}

// fsPartialProvider resolves templates/<name>.mustache.
type fsPartialProvider struct {
	fs fs.ReadFileFS
}

func (p *fsPartialProvider) Get(name string) (string, error) {
	raw, err := p.fs.ReadFile(path.Join("templates", name+".mustache"))
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(raw), nil
}
