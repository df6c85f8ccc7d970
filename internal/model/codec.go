package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown model format")

// FormatOf picks the decoder from a file name extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Decode reads a model document and returns the indexed registry. Spaces
// without a multiplier get 1 and meta fields absent from the document keep
// their DefaultMeta values.
func Decode(r io.Reader, f Format) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	m := Model{Meta: DefaultMeta()}
	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	case YAML:
		err = yaml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return Build(m), nil
}

// Build sets a multiplier of 1 and the CONDITIONED type on spaces that lack
// them, as the workbook importer does, and indexes m.
func Build(m Model) *Model {
	for i := range m.Spaces {
		if m.Spaces[i].Multiplier == 0 {
			m.Spaces[i].Multiplier = 1
		}
		if m.Spaces[i].SpaceType == "" {
			m.Spaces[i].SpaceType = Conditioned
		}
	}
	return New(m)
}

// Encode writes m as an indented JSON or YAML document.
func Encode(w io.Writer, m *Model, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
