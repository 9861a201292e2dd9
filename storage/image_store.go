package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"
)

// ReportImagesPrefix is the top-level folder for issue photos.
const ReportImagesPrefix = "report-images"

// MaxImageSize caps a single upload.
const MaxImageSize = 10 << 20

var (
	ErrInvalidPath  = errors.New("invalid object path")
	ErrImageTooBig  = errors.New("image exceeds size limit")
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// ImageStore keeps uploaded images on the local filesystem and serves them
// under publicBaseURL + "/uploads".
type ImageStore struct {
	root          string
	publicBaseURL string
}

func NewImageStore(root, publicBaseURL string) (*ImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{root: root, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Root is the directory served as /uploads.
func (s *ImageStore) Root() string { return s.root }

// ObjectPath builds report-images/{userID}/{title}-{filename} with every
// segment reduced to safe characters.
func ObjectPath(userID, title, filename string) string {
	name := sanitizeSegment(filepath.Base(filename))
	if name == "" {
		name = "image"
	}
	if t := sanitizeSegment(title); t != "" {
		name = t + "-" + name
	}
	return path.Join(ReportImagesPrefix, sanitizeSegment(userID), name)
}

func sanitizeSegment(s string) string {
	s = unsafeNameChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._")
	return s
}

// Upload writes r to objectPath. The write is atomic: readers never observe
// a partially written image.
func (s *ImageStore) Upload(ctx context.Context, objectPath string, r io.Reader) error {
	dest, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	limited := &limitedReader{r: r, remaining: MaxImageSize}
	if err := atomic.WriteFile(dest, limited); err != nil {
		if limited.exceeded {
			return ErrImageTooBig
		}
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// PublicURL is the address clients use to fetch objectPath.
func (s *ImageStore) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/uploads/" + strings.TrimLeft(path.Clean("/"+objectPath), "/")
}

func (s *ImageStore) resolve(objectPath string) (string, error) {
	for _, segment := range strings.Split(objectPath, "/") {
		if segment == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, ErrImageTooBig
	}
	return n, err
}
