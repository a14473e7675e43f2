package espeakgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// InstallBindings copies generated binding files into destDir, keeping
// their layout relative to the bindings directory, and returns the
// installed paths relative to destDir in slash form.
//
// Only .go files are installed; c-for-go manifests stay in the output
// directory.
func InstallBindings(config *Config, files []string, destDir string) ([]string, error) {
	if destDir == "" || len(files) == 0 {
		return nil, nil
	}

	bindingsDir := filepath.Join(config.OutDir, bindingsDirName)

	var installed []string
	for _, file := range files {
		if !strings.EqualFold(filepath.Ext(file), ".go") {
			continue
		}

		rel, err := filepath.Rel(bindingsDir, file)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = filepath.Base(file)
		}
		rel = safeRelativePath(rel)

		if err := copyFile(file, filepath.Join(destDir, rel)); err != nil {
			return nil, fmt.Errorf("failed to install %s: %w", file, err)
		}
		installed = append(installed, filepath.ToSlash(rel))
	}

	return installed, nil
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func safeRelativePath(path string) string {
	clean := filepath.Clean(path)
	if clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return clean
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
