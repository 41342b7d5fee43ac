package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"textdigest/internal/domain/entity"
)

// SourcesFile is the YAML document listing the sources of scheduled digests.
//
//	defaults:
//	  ratio: 0.2
//	  window: 24h
//	sources:
//	  - name: Go Blog
//	    kind: feed
//	    location: https://go.dev/blog/feed.atom
//	  - kind: mailbox
//	    location: /var/mail/digest
//	    window: 48h
//	  - kind: page
//	    location: https://example.com/blog
//	    selectors: {item: article, title: h2, link: a}
type SourcesFile struct {
	Defaults struct {
		Ratio  float64       `yaml:"ratio"`
		Window time.Duration `yaml:"window"`
	} `yaml:"defaults"`
	Sources []entity.Source `yaml:"sources"`
}

// LoadSources reads and validates a sources file. Defaults are copied into
// sources that leave ratio or window unset.
func LoadSources(path string) (*SourcesFile, error) {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources parses and validates the YAML content of a sources file.
func ParseSources(data []byte) (*SourcesFile, error) {
	var file SourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("sources validation failed: %w", err)
	}
	return &file, nil
}

func (f *SourcesFile) validate() error {
	if f.Defaults.Ratio != 0 {
		if err := entity.ValidateRatio(f.Defaults.Ratio); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}
	if f.Defaults.Window < 0 {
		return errors.New("defaults: window must not be negative")
	}
	if len(f.Sources) == 0 {
		return errors.New("at least one source is required")
	}

	var errs []error
	for i := range f.Sources {
		src := &f.Sources[i]
		if src.Ratio == 0 {
			src.Ratio = f.Defaults.Ratio
		}
		if src.Window == 0 && src.Kind == entity.SourceKindMailbox {
			src.Window = f.Defaults.Window
		}
		if err := src.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
