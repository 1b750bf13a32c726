package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"courses-backend/internal/courses"
	"courses-backend/internal/shared/metrics"
	"courses-backend/internal/shared/telemetry"
)

const archiveExt = ".zip"

// disallowedExts are executable or script-like entry extensions that are
// never extracted. The .go entry covers this service's own source extension.
var disallowedExts = map[string]struct{}{
	".exe": {},
	".dll": {},
	".bat": {},
	".sh":  {},
	".com": {},
	".go":  {},
}

// Ingestor turns untrusted ZIP bytes into an extracted course directory
// and a registry record. A record is published only after extraction has
// fully completed; any extraction failure removes the directory again.
type Ingestor struct {
	Repo     courses.Repo
	DataDir  string
	MaxBytes int64
}

// Ingest validates, extracts and registers one uploaded archive.
func (ing *Ingestor) Ingest(ctx context.Context, data []byte, declaredFilename, owner, number, title string) (courses.CourseRecord, error) {
	if err := ctx.Err(); err != nil {
		return courses.CourseRecord{}, err
	}

	if !strings.HasSuffix(strings.ToLower(declaredFilename), archiveExt) {
		return courses.CourseRecord{}, ErrUnsupportedFormat
	}
	if int64(len(data)) > ing.MaxBytes {
		return courses.CourseRecord{}, ErrTooLarge
	}

	metrics.IncIngestStarted()
	start := time.Now()

	courseID := uuid.NewString()
	dir := filepath.Join(ing.DataDir, courseID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.IncIngestFailed()
		return courses.CourseRecord{}, fmt.Errorf("%w: create storage dir: %v", ErrExtractionFailed, err)
	}

	skipped, err := extractAll(data, dir)
	if err != nil {
		os.RemoveAll(dir)
		metrics.IncIngestFailed()
		telemetry.Error("ingest.extraction_failed", map[string]any{
			"course_id": courseID,
			"filename":  declaredFilename,
			"owner":     owner,
			"err":       err.Error(),
		})
		return courses.CourseRecord{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	metrics.AddIngestSkippedEntries(skipped)

	storagePath, err := filepath.Abs(dir)
	if err != nil {
		os.RemoveAll(dir)
		metrics.IncIngestFailed()
		return courses.CourseRecord{}, fmt.Errorf("%w: resolve storage path: %v", ErrExtractionFailed, err)
	}

	rec := courses.CourseRecord{
		ID:          courseID,
		Owner:       owner,
		Number:      number,
		Title:       title,
		Filename:    declaredFilename,
		StoragePath: storagePath,
		AccessToken: newAccessToken(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := ing.Repo.Put(ctx, rec); err != nil {
		// The directory must not outlive a record that was never written.
		os.RemoveAll(dir)
		metrics.IncIngestFailed()
		return courses.CourseRecord{}, fmt.Errorf("persist course record: %w", err)
	}

	metrics.IncIngestCompleted()
	metrics.ObserveIngestDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	telemetry.Info("ingest.completed", map[string]any{
		"course_id":       courseID,
		"filename":        declaredFilename,
		"owner":           owner,
		"size_bytes":      len(data),
		"skipped_entries": skipped,
	})
	return rec, nil
}

// extractAll copies every safe entry of the archive into dir, byte for
// byte. Unsafe entries are skipped silently so an archive with some bad
// entries still yields its safe subset; a corrupt archive or an I/O
// failure aborts the whole extraction.
func extractAll(data []byte, dir string) (skipped int, err error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		// ErrInsecurePath flags traversal or absolute entry names but
		// leaves the reader usable; those entries are skipped below so
		// the safe subset still extracts.
		if !errors.Is(err, zip.ErrInsecurePath) {
			return 0, fmt.Errorf("open archive: %w", err)
		}
	}

	for _, f := range zr.File {
		name := f.Name
		if strings.HasSuffix(name, "/") || f.FileInfo().IsDir() {
			continue
		}
		if unsafeEntryPath(name) {
			skipped++
			continue
		}
		if _, bad := disallowedExts[strings.ToLower(path.Ext(name))]; bad {
			skipped++
			continue
		}

		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return skipped, fmt.Errorf("mkdir for %s: %w", name, err)
		}
		if err := copyEntry(f, target); err != nil {
			return skipped, fmt.Errorf("extract %s: %w", name, err)
		}
	}
	return skipped, nil
}

func copyEntry(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// unsafeEntryPath reports whether an archive entry name could land
// outside the extraction directory: absolute paths, drive-qualified
// paths, or any parent-directory segment at any position.
func unsafeEntryPath(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return true
	}
	if filepath.IsAbs(name) || strings.Contains(name, ":") {
		return true
	}
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// newAccessToken returns a high-entropy URL-safe secret, generated
// separately from course IDs.
func newAccessToken() string {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process has bigger problems;
		// an unguessable token cannot be produced without it.
		panic(fmt.Sprintf("access token entropy unavailable: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}
