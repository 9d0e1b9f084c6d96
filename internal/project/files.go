package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RTL source extensions recognized when scanning directories.
var rtlExtensions = map[string]bool{
	".v":   true,
	".sv":  true,
	".vh":  true,
	".svh": true,
}

// IsRTLFile reports whether path has a recognized RTL source extension.
func IsRTLFile(path string) bool {
	return rtlExtensions[strings.ToLower(filepath.Ext(path))]
}

// CollectFiles lists RTL source files under dir, sorted, skipping hidden
// directories and common build folders.
func CollectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories and common build folders
			if len(name) > 1 && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if name == "target" || name == "build" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if IsRTLFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
