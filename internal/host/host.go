// Package host provides the file access a source map decoder needs: reading
// text documents by locator and resolving relative references.
package host

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedScheme is returned when a locator is a URL that is not a
// file:// URL.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

var urlPattern = regexp.MustCompile(`^[\w\-]+:[\\/]{2}`)

// FS reads documents from an afero filesystem.
type FS struct {
	fs afero.Fs
}

// New returns an FS backed by fs. The filesystem is wrapped read-only.
func New(fs afero.Fs) *FS {
	return &FS{fs: afero.NewReadOnlyFs(fs)}
}

// NewOS returns an FS reading from the operating system.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// ReadText reads the document at locator and decodes it to UTF-8. Plain
// paths and file:// URLs are supported.
func (h *FS) ReadText(locator string) (string, error) {
	name, err := toPath(locator)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(h.fs, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", locator, err)
	}

	text, err := DecodeText(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %q: %w", locator, err)
	}
	return text, nil
}

// Resolve resolves rel against base.
func (h *FS) Resolve(base, rel string) string {
	return Resolve(base, rel)
}

// DecodeText converts data to a UTF-8 string. A UTF-8, UTF-16BE or UTF-16LE
// byte order mark selects the encoding and is removed; without one the data
// is taken as UTF-8.
func DecodeText(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// IsURL reports whether locator starts with a scheme followed by two slashes.
func IsURL(locator string) bool {
	return urlPattern.MatchString(locator)
}

// IsFileURL reports whether locator is a file:// URL.
func IsFileURL(locator string) bool {
	return len(locator) >= 7 && strings.EqualFold(locator[:7], "file://")
}

// IsRooted reports whether locator is a URL or an absolute path.
func IsRooted(locator string) bool {
	if IsURL(locator) || strings.HasPrefix(locator, "/") || strings.HasPrefix(locator, `\`) {
		return true
	}
	return runtime.GOOS == "windows" && filepath.IsAbs(locator)
}

// Resolve resolves rel against base. A rooted rel is returned unchanged. URL
// bases use URL reference resolution, path bases are joined.
func Resolve(base, rel string) string {
	switch {
	case rel == "":
		return base
	case base == "" || IsRooted(rel):
		return rel
	case IsURL(base):
		b, err := url.Parse(base)
		if err != nil {
			return rel
		}
		r, err := url.Parse(rel)
		if err != nil {
			return rel
		}
		return b.ResolveReference(r).String()
	case IsRooted(base):
		return filepath.Join(base, rel)
	default:
		return strings.TrimSuffix(base, "/") + "/" + rel
	}
}

// Dir returns the directory part of locator.
func Dir(locator string) string {
	if IsURL(locator) {
		u, err := url.Parse(locator)
		if err == nil {
			u.Path = path.Dir(u.Path)
			if !strings.HasSuffix(u.Path, "/") {
				u.Path += "/"
			}
			return u.String()
		}
	}
	return filepath.Dir(locator)
}

// Absolute makes locator absolute against the working directory unless it is
// already rooted.
func Absolute(locator string) (string, error) {
	if IsRooted(locator) {
		return locator, nil
	}
	abs, err := filepath.Abs(locator)
	if err != nil {
		return "", fmt.Errorf("failed to make %q absolute: %w", locator, err)
	}
	return abs, nil
}

func toPath(locator string) (string, error) {
	if !IsURL(locator) {
		return locator, nil
	}
	if !IsFileURL(locator) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, locator)
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid file url %q: %w", locator, err)
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p), nil
}
