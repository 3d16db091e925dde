package document

import (
	"bytes"
	"fmt"
	"os"

	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/spf13/afero"
)

// LoadFile reads a license document from fs. Files whose first non-space
// byte is '{' are read as the JSON projection, anything else as XML.
func LoadFile(fs afero.Fs, path string) (*model.License, error) {
	b, err := ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	return Parse(b)
}

// ReadFile returns the raw bytes of a license file, or an EntityNotFoundError.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkg.EntityNotFoundError{
				EntityType: "License",
				Message:    fmt.Sprintf("license file %s not found", path),
				Err:        err,
			}
		}

		return nil, err
	}

	return b, nil
}

// Parse detects the wire form of b and loads it.
func Parse(b []byte) (*model.License, error) {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '{' {
		return FromJSON(trimmed)
	}

	return Load(b)
}

// SaveFile writes the canonical XML of l to path.
func SaveFile(fs afero.Fs, path string, l *model.License) error {
	b, err := Marshal(l)
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, path, b, 0o644)
}
