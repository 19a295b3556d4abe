package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Directories created under the root directory
var assetDirs = []string{
	filepath.Join("static", "email", "test-emails"),
	filepath.Join("static", "email", "templates"),
	filepath.Join("static", "assets"),
}

// EmailTemplateDir returns the directory email templates are served from
func EmailTemplateDir(rootDir string) string {
	return filepath.Join(rootDir, "static", "email", "templates")
}

// AssetResult reports what EnsureAssets changed
type AssetResult struct {
	TemplatesCopied bool
	SourceMissing   bool
}

// EnsureAssets creates the static directory layout under rootDir and copies the
// email templates from templateSource when the partials directory is missing.
// A relative templateSource is resolved against rootDir. Running it twice is a no-op.
func EnsureAssets(rootDir, templateSource string) (AssetResult, error) {
	for _, dir := range assetDirs {
		if err := os.MkdirAll(filepath.Join(rootDir, dir), 0o755); err != nil {
			return AssetResult{}, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	templateDir := EmailTemplateDir(rootDir)
	if _, err := os.Stat(filepath.Join(templateDir, "partials")); err == nil {
		return AssetResult{}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return AssetResult{}, fmt.Errorf("failed to inspect email templates: %w", err)
	}

	if !filepath.IsAbs(templateSource) {
		templateSource = filepath.Join(rootDir, templateSource)
	}
	info, err := os.Stat(templateSource)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return AssetResult{SourceMissing: true}, nil
	}
	if err != nil {
		return AssetResult{}, fmt.Errorf("failed to inspect template source: %w", err)
	}

	if err := copyTree(templateSource, templateDir); err != nil {
		return AssetResult{}, fmt.Errorf("failed to copy email templates: %w", err)
	}
	return AssetResult{TemplatesCopied: true}, nil
}

// copyTree copies src into dst, overwriting existing files
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
