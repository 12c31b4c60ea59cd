package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gamescript/script"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the output writer of the invoking kong context, falling
// back to os.Stdout when commands run outside the CLI (tests).
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// dumpTable prints all visible bindings of a symbol table, one per line.
func dumpTable(w io.Writer, label string, t *script.SymbolTable) {
	fmt.Fprintf(w, "%s:\n", label)

	for name, value := range t.All() {
		fmt.Fprintf(w, "  %s = %s\n", name, value)
	}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources reads and concatenates the given script source paths.
// Duplicate files are read once: paths are resolved through symlinks and
// compared by device/inode pair. All occurrences of "-" are replaced with
// a single stdin read placed after the regular files.
func readSources(sources []string) (string, error) {
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	var buf []byte

	hasStdin := false

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		data, ok, err := readUniqueFile(src, seen)
		if err != nil {
			return "", script.ErrReadSource.Wrap(err)
		}

		if !ok {
			continue
		}

		buf = append(buf, data...)
		buf = append(buf, '\n')
	}

	// Stdin may have been named as a regular file, too.
	if _, ok := seen[stdinKey]; ok {
		hasStdin = true
	}

	if hasStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", script.ErrReadSource.Wrap(err)
		}

		buf = append(buf, data...)
	}

	return string(buf), nil
}

// readUniqueFile reads the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
func readUniqueFile(
	path string,
	seen map[fileKey]struct{},
) ([]byte, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, false, nil
		}

		seen[key] = struct{}{}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type
// *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// parseBindings converts "name=value" flag strings into symbol bindings.
func parseBindings(pairs []string) (map[string]script.Value, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]script.Value, len(pairs))

	for _, pair := range pairs {
		name, text, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, ErrBadBinding.Wrap(
				fmt.Errorf("%q is not name=value", pair),
			)
		}

		value, err := script.ParseValue(text)
		if err != nil {
			return nil, ErrBadBinding.Wrap(err)
		}

		out[name] = value
	}

	return out, nil
}
