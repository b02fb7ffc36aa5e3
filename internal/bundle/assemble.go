package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

// ErrMissingSource is returned by Assemble when a manifest source is absent.
var ErrMissingSource = errors.New("missing bundle source")

// Assemble copies the binaries and the data payload from root into out.
//
// out must not exist or be empty. Every source is checked before anything is
// copied.
func (m *Manifest) Assemble(ctx context.Context, root, out string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	items := []Mapping{
		{Source: binaryName(m.Entry), Dest: binaryName(m.Entry)},
		{Source: binaryName(m.Server), Dest: binaryName(m.Server)},
	}
	items = append(items, m.Data...)
	for _, it := range items {
		if _, err := os.Stat(filepath.Join(root, it.Source)); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingSource, it.Source)
		}
	}
	if err := prepareOutput(out); err != nil {
		return err
	}
	for _, it := range items {
		if err := copyTree(ctx, filepath.Join(root, it.Source), filepath.Join(out, it.Dest)); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "Bundle assembled", "name", m.Name, "out", out, "items", len(items))
	return nil
}

func binaryName(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

func prepareOutput(out string) error {
	entries, err := os.ReadDir(out)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read output directory: %w", err)
	case len(entries) != 0:
		return fmt.Errorf("output directory %s is not empty", out)
	}
	if err := os.MkdirAll(out, 0o755); err != nil { //nolint:gosec // G301: bundle is meant to be shared
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755) //nolint:gosec // G301: bundle is meant to be shared
		}
		if !d.Type().IsRegular() {
			slog.WarnContext(ctx, "Skipping non-regular file", "path", p)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "Copying", "src", p, "dst", target)
		return copyFile(p, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // G301: bundle is meant to be shared
		return err
	}
	in, err := os.Open(src) //nolint:gosec // G304: source comes from the manifest
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm) //nolint:gosec // G304: destination is under the output directory
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
