package photos

import (
	"context"
	"time"

	"rental-portal/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultMaxFiles    = 10
	DefaultMaxFileSize = 20 << 20
	DefaultWorkers     = 4
)

// Catalog is the property and unit lookup the photo service depends on
// Missing rows are reported as models.ErrNotFound
type Catalog interface {
	GetPropertyByID(ctx context.Context, id uint) (*models.Property, error)
	GetUnitByID(ctx context.Context, id uint) (*models.Unit, error)
	GetUnits(ctx context.Context, propertyID uint) ([]models.Unit, error)
}

// Options configures a Service
type Options struct {
	Root         string
	PublicPrefix string
	MaxFiles     int
	MaxFileSize  int64
	Workers      int
	Normalizer   Normalizer
}

// Service implements photo upload, listing and deletion on top of a Store
type Service struct {
	store      Store
	catalog    Catalog
	resolver   Resolver
	normalizer Normalizer
	prefix     string
	maxFiles   int
	maxSize    int64
	workers    int
	observer   *Observer
	log        *zap.Logger
	now        func() time.Time
}

// NewService wires a photo service. observer and log may be nil
func NewService(store Store, catalog Catalog, opts Options, observer *Observer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Normalizer == (Normalizer{}) {
		opts.Normalizer = NewNormalizer(0, 0, 0)
	}
	if opts.PublicPrefix == "" {
		opts.PublicPrefix = "/"
	}
	return &Service{
		store:      store,
		catalog:    catalog,
		resolver:   NewResolver(opts.Root),
		normalizer: opts.Normalizer,
		prefix:     opts.PublicPrefix,
		maxFiles:   opts.MaxFiles,
		maxSize:    opts.MaxFileSize,
		workers:    opts.Workers,
		observer:   observer,
		log:        log,
		now:        time.Now,
	}
}

// Resolver returns the path resolver used by the service
func (s *Service) Resolver() Resolver {
	return s.resolver
}

// Store returns the backing store
func (s *Service) Store() Store {
	return s.store
}

// URL converts a storage key into its public URL
func (s *Service) URL(key string) string {
	if len(s.prefix) > 0 && s.prefix[len(s.prefix)-1] == '/' {
		return s.prefix + key
	}
	return s.prefix + "/" + key
}
