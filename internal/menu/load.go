package menu

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akave-ai/hltmenu/internal/pset"
)

// CfiSuffix is the file name suffix of module configuration fragments.
const CfiSuffix = "_cfi.py"

// LoadFile parses one configuration fragment.
func LoadFile(path string) (*pset.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mod, err := pset.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// LoadDir parses every *_cfi.py file of dir, in file name order, into a new menu.
func LoadDir(name, dir string, external ...string) (*Menu, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CfiSuffix) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	m := New(name, external...)
	for _, f := range files {
		mod, err := LoadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, err
		}
		if err := m.Add(mod); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
	}
	return m, nil
}
