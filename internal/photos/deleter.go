package photos

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// KeyForPath converts a photo URL or path, as issued by Upload or
// Taxonomy, into a storage key. The result is canonical and always lies
// below the storage root
func (s *Service) KeyForPath(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: path is required", ErrValidation)
	}
	if strings.ContainsAny(raw, "\\\x00") {
		return "", fmt.Errorf("%w: invalid photo path", ErrForbidden)
	}

	rel := raw
	switch {
	case strings.HasPrefix(rel, s.prefix):
		rel = strings.TrimPrefix(rel, s.prefix)
	case strings.Contains(rel, "://"):
		// Absolute URLs from another host only have their path considered
		u, err := url.Parse(rel)
		if err != nil {
			return "", fmt.Errorf("%w: invalid photo path", ErrValidation)
		}
		rel = u.Path
	}

	key := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if !s.resolver.Contains(key) {
		return "", fmt.Errorf("%w: path outside photo storage", ErrForbidden)
	}
	return key, nil
}

// Delete removes a single stored photo. Directories are never removed
func (s *Service) Delete(ctx context.Context, rawPath string) (err error) {
	start := time.Now()
	defer func() { s.observer.record("delete", start, err) }()

	key, err := s.KeyForPath(rawPath)
	if err != nil {
		s.log.Warn("Rejected photo delete", zap.String("path", rawPath), zap.Error(err))
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.log.Info("Photo deleted", zap.String("key", key))
	return nil
}
