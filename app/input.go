package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"choicelab/adapters/tabular"
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/ports"
)

// GroupInput names one group's trial file. Content, when set, is used instead
// of reading Path (uploads); Path then only supplies the file name.
type GroupInput struct {
	Label   string
	Path    string
	Source  string
	Content []byte
}

// FileInput is a single table without a source profile
type FileInput struct {
	Path    string
	Content []byte
}

// loadTable reads the file's bytes once so the table and the recorded content
// hash come from the same data.
func loadTable(reader ports.TableReader, path string, content []byte) (*tabular.Table, core.Hash, error) {
	if content == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		content = data
	}
	hash := core.NewHash(content)

	var (
		t   *tabular.Table
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		t, err = reader.ReadCSV(bytes.NewReader(content), path)
	case ".xlsx", ".xlsm":
		t, err = reader.ReadExcel(bytes.NewReader(content), path)
	default:
		err = fmt.Errorf("%w: unsupported file type %q for %s (want .csv or .xlsx)", core.ErrInvalidValue, ext, path)
	}
	if err != nil {
		return nil, "", err
	}
	return t, hash, nil
}

func runInput(label, path, source string, hash core.Hash) run.Input {
	return run.Input{Label: label, Path: filepath.Base(path), Source: source, Hash: hash}
}
