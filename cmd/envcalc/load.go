package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/premium/importer"
	"Envolvente/internal/model"
)

// loadModel reads a JSON, YAML or xlsx model file.
func loadModel(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.ReadModel(f)
	}
	format, err := model.FormatOf(path)
	if err != nil {
		return nil, err
	}
	return model.Decode(f, format)
}

// parseIrradiance turns ORIENTATION=value pairs into an irradiance table.
func parseIrradiance(pairs map[string]string) (indicators.Irradiance, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	rad := indicators.Irradiance{}
	for k, v := range pairs {
		o := model.Orientation(strings.ToUpper(strings.TrimSpace(k)))
		if !slices.Contains(model.Orientations, o) {
			return nil, fmt.Errorf("invalid orientation %q", k)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("irradiance %s: %w", k, err)
		}
		rad[o] = f
	}
	return rad, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func createOutput(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("output file required (-o)")
	}
	return os.Create(path)
}
