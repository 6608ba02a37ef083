// Package discovery enumerates source documents under the input root.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the source file extension a candidate must carry,
// matched case-insensitively.
const Extension = ".pdf"

// ErrRootCreated indicates the input root did not exist and was created
// empty. There is nothing to process; the operator should populate the
// directory and run again.
var ErrRootCreated = errors.New("input directory was created, put source files inside and run again")

// Find walks root recursively and returns the relative paths of all files
// whose name ends in Extension. Order is directory-walk order and carries no
// guarantee beyond being stable for display.
func Find(root string) ([]string, error) {
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.MkdirAll(root, 0o755); mkErr != nil {
			return nil, fmt.Errorf("failed to create input directory %s: %w", root, mkErr)
		}
		return nil, fmt.Errorf("%s: %w", root, ErrRootCreated)
	case err != nil:
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("input path %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), Extension) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	return files, nil
}
