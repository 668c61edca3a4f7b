package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Source supplies workflow definitions by record type. A record type
// without a workflow is reported via the boolean, never as an error.
type Source interface {
	DefinitionFor(recordType string) (*Definition, bool, error)
}

type definitionsFile struct {
	Workflows []Definition `toml:"workflow"`
}

// FileSource reads workflow definitions from a TOML file once at
// construction. Workflow configuration changes are rare administrative
// events; a process restart picks them up.
type FileSource struct {
	byType map[string]*Definition
}

// NewFileSource parses the definitions file. A missing file yields an
// empty source: no workflows, not an error.
func NewFileSource(path string) (*FileSource, error) {
	source := &FileSource{byType: make(map[string]*Definition)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return source, nil
		}
		return nil, fmt.Errorf("read workflow definitions: %w", err)
	}

	var parsed definitionsFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse workflow definitions: %w", err)
	}

	for i := range parsed.Workflows {
		def := parsed.Workflows[i]
		recordType := strings.TrimSpace(def.RecordType)
		if recordType == "" {
			return nil, fmt.Errorf("workflow %q: record_type must be set", def.Name)
		}
		if _, dup := source.byType[recordType]; dup {
			return nil, fmt.Errorf("workflow %q: duplicate definition for record type %q", def.Name, recordType)
		}
		source.byType[recordType] = &def
	}
	return source, nil
}

// DefinitionFor implements Source.
func (s *FileSource) DefinitionFor(recordType string) (*Definition, bool, error) {
	def, ok := s.byType[strings.TrimSpace(recordType)]
	return def, ok, nil
}

// StaticSource serves definitions from an in-memory map, keyed by
// record type. Used by tests and embedded hosts.
type StaticSource map[string]*Definition

// DefinitionFor implements Source.
func (s StaticSource) DefinitionFor(recordType string) (*Definition, bool, error) {
	def, ok := s[recordType]
	return def, ok, nil
}
