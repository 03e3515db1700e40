package validation

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

type (
	Options struct {
		Countries      []string
		Statuses       []string
		MaxCompetitors int
		MaxNameLength  int
	}

	configForm struct {
		Countries      *[]string `yaml:"countries,flow"`
		Statuses       *[]string `yaml:"statuses,flow"`
		MaxCompetitors *int      `yaml:"maxCompetitors"`
		MaxNameLength  *int      `yaml:"maxNameLength"`
	}
)

const (
	DefaultMaxCompetitors = 3
	DefaultMaxNameLength  = 25
)

var (
	ErrNoCountries          = errors.New("no countries allowed")
	ErrNoStatuses           = errors.New("no statuses allowed")
	ErrInvalidMaxCompetitor = errors.New("invalid competitor count")
	ErrInvalidMaxLength     = errors.New("invalid competitor name length")
)

func DefaultOptions() Options {
	return Options{
		Countries:      []string{"UA", "PL", "DE", "US", "GB"},
		Statuses:       []string{"active", "inactive"},
		MaxCompetitors: DefaultMaxCompetitors,
		MaxNameLength:  DefaultMaxNameLength,
	}
}

// ParseOptions reads the optional "form" section of a YAML document and lays
// it over the defaults. An empty document yields the defaults.
func ParseOptions(configDataSource io.Reader) (Options, error) {
	var c struct {
		Form configForm `yaml:"form"`
	}

	if err := yaml.NewDecoder(configDataSource).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("failed to decode config data: %w", err)
	}

	o := DefaultOptions()

	if c.Form.Countries != nil {
		o.Countries = *c.Form.Countries
	}

	if c.Form.Statuses != nil {
		o.Statuses = *c.Form.Statuses
	}

	if c.Form.MaxCompetitors != nil {
		o.MaxCompetitors = *c.Form.MaxCompetitors
	}

	if c.Form.MaxNameLength != nil {
		o.MaxNameLength = *c.Form.MaxNameLength
	}

	if err := o.validate(); err != nil {
		return Options{}, fmt.Errorf("form configuration invalid: %w", err)
	}

	return o, nil
}

func (o *Options) validate() error {
	if len(o.Countries) == 0 {
		return ErrNoCountries
	}

	if len(o.Statuses) == 0 {
		return ErrNoStatuses
	}

	if o.MaxCompetitors <= 0 {
		return ErrInvalidMaxCompetitor
	}

	if o.MaxNameLength <= 0 {
		return ErrInvalidMaxLength
	}

	return nil
}
