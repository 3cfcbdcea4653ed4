package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"rental-portal/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileInput is one uploaded file. Open is called once, during processing
type FileInput struct {
	OriginalName string
	ContentType  string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// Destination identifies where an upload batch is stored. A non-nil UnitID
// stores the batch in the unit's directory and Category is ignored
type Destination struct {
	PropertyID uint
	Category   Category
	UnitID     *uint
}

// UploadResult describes a stored photo
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	SizeBytes    int64  `json:"sizeBytes"`
	URL          string `json:"url"`
}

// FileError reports a file of the batch that could not be stored
type FileError struct {
	OriginalName string `json:"originalName"`
	Error        string `json:"error"`

	err error
}

// UploadReport holds the per-file outcomes of a batch
type UploadReport struct {
	Files  []UploadResult `json:"files"`
	Errors []FileError    `json:"errors"`
}

// Upload validates the whole batch, then normalizes and stores each file
// independently. The report lists successes and failures; an error is
// returned with the report only when no file was stored
func (s *Service) Upload(ctx context.Context, dest Destination, files []FileInput) (report *UploadReport, err error) {
	start := time.Now()
	defer func() { s.observer.record("upload", start, err) }()

	if err := s.validateBatch(files); err != nil {
		return nil, err
	}
	dir, err := s.destinationDir(ctx, dest)
	if err != nil {
		return nil, err
	}

	names := batchFilenames(s.now(), files)
	results := make([]UploadResult, len(files))
	failures := make([]error, len(files))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i := range files {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			results[i], failures[i] = s.storeFile(ctx, dir, names[i], files[i])
			return nil
		})
	}
	_ = g.Wait()

	report = &UploadReport{Files: []UploadResult{}, Errors: []FileError{}}
	writeFailed := false
	for i, f := range files {
		if failures[i] == nil {
			report.Files = append(report.Files, results[i])
			s.observer.file("stored", int(results[i].SizeBytes))
			continue
		}
		s.observer.file("failed", 0)
		if !IsClientError(failures[i]) {
			writeFailed = true
		}
		report.Errors = append(report.Errors, FileError{
			OriginalName: f.OriginalName,
			Error:        clientMessage(failures[i]),
			err:          failures[i],
		})
	}

	s.log.Info("Photo upload processed",
		zap.Uint("property_id", dest.PropertyID),
		zap.String("dir", dir),
		zap.Int("stored", len(report.Files)),
		zap.Int("failed", len(report.Errors)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if len(report.Files) == 0 {
		if writeFailed {
			return report, fmt.Errorf("%w: no photos could be stored", ErrWrite)
		}
		return report, fmt.Errorf("%w: none of the uploaded files could be processed", ErrDecode)
	}
	return report, nil
}

func (s *Service) validateBatch(files []FileInput) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files uploaded", ErrValidation)
	}
	if len(files) > s.maxFiles {
		return fmt.Errorf("%w: too many files, at most %d per upload", ErrPayloadTooLarge, s.maxFiles)
	}
	for _, f := range files {
		if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
			return fmt.Errorf("%w: only image files are allowed (%s)", ErrUnsupportedMediaType, f.OriginalName)
		}
		if f.Size > s.maxSize {
			return fmt.Errorf("%w: %s exceeds the %d MB limit", ErrPayloadTooLarge, f.OriginalName, s.maxSize>>20)
		}
		if f.Open == nil {
			return fmt.Errorf("%w: %s has no content", ErrValidation, f.OriginalName)
		}
	}
	return nil
}

// destinationDir resolves the batch directory from stored rows, never from
// client supplied names
func (s *Service) destinationDir(ctx context.Context, dest Destination) (string, error) {
	if dest.PropertyID == 0 {
		return "", fmt.Errorf("%w: propertyId is required", ErrValidation)
	}
	property, err := s.lookupProperty(ctx, dest.PropertyID)
	if err != nil {
		return "", err
	}
	root, err := s.resolver.PropertyRoot(property.City, property.Name)
	if err != nil {
		return "", err
	}

	if dest.UnitID == nil {
		if dest.Category == "" {
			return "", fmt.Errorf("%w: type or unitId is required", ErrValidation)
		}
		category, err := ParseCategory(string(dest.Category))
		if err != nil {
			return "", err
		}
		return s.resolver.CategoryDir(root, category), nil
	}

	unit, err := s.catalog.GetUnitByID(ctx, *dest.UnitID)
	if errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("%w: unit %d", ErrNotFound, *dest.UnitID)
	}
	if err != nil {
		return "", fmt.Errorf("load unit: %w", err)
	}
	if unit.PropertyID != property.ID {
		return "", fmt.Errorf("%w: unit %d does not belong to property %d", ErrValidation, unit.ID, property.ID)
	}
	return s.resolver.UnitDir(root, unit.UnitNumber)
}

func (s *Service) lookupProperty(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.catalog.GetPropertyByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: property %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load property: %w", err)
	}
	return property, nil
}

// batchFilenames names every file of a batch "{ms}-{base}.jpg" with one
// shared timestamp. Repeated base names get a counter suffix so files of
// the same batch never share a key
func batchFilenames(at time.Time, files []FileInput) []string {
	stamp := at.UnixMilli()
	used := make(map[string]bool, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		base := SanitizeBaseName(f.OriginalName)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = fmt.Sprintf("%d-%s.jpg", stamp, name)
	}
	return names
}

func (s *Service) storeFile(ctx context.Context, dir, filename string, f FileInput) (UploadResult, error) {
	rc, err := f.Open()
	if err != nil {
		return UploadResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	// The declared size was checked already; this bounds what is read
	data, err := s.normalizer.Normalize(io.LimitReader(rc, s.maxSize+1))
	if err != nil {
		s.log.Warn("Failed to normalize photo", zap.String("file", f.OriginalName), zap.Error(err))
		return UploadResult{}, err
	}

	key := path.Join(dir, filename)
	if err := s.store.Put(ctx, key, data, "image/jpeg"); err != nil {
		s.log.Error("Failed to store photo", zap.String("key", key), zap.Error(err))
		return UploadResult{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return UploadResult{
		Filename:     filename,
		OriginalName: f.OriginalName,
		SizeBytes:    int64(len(data)),
		URL:          s.URL(key),
	}, nil
}

// clientMessage hides storage details behind a generic message
func clientMessage(err error) string {
	if IsClientError(err) {
		return err.Error()
	}
	return "failed to store photo"
}

// Err returns the underlying failure
func (e FileError) Err() error {
	return e.err
}
