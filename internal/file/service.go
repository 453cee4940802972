package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/radif/filegateway/internal/staging"
	"github.com/radif/filegateway/internal/storage"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("file not found")

// ErrNoFile is returned when an upload request carries no file part.
var ErrNoFile = errors.New("no file uploaded")

// ErrLedgerDisabled is returned by Recent when no ledger is configured.
var ErrLedgerDisabled = errors.New("upload ledger disabled")

// Ledger stores a record of every completed upload.
type Ledger interface {
	Record(ctx context.Context, u *Upload) error
	Recent(ctx context.Context, limit int) ([]Upload, error)
}

// UploadRequest is a single file received by the gateway.
type UploadRequest struct {
	Folder      string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Service sequences the staging store and the object store.
type Service struct {
	store   storage.Storage
	staging *staging.Store
	ledger  Ledger
}

// NewService creates a new file Service. ledger may be nil.
func NewService(store storage.Storage, stg *staging.Store, ledger Ledger) *Service {
	return &Service{store: store, staging: stg, ledger: ledger}
}

// Upload stages the request body on disk, then relays the staged copy to the object
// store under the original filename. The staged copy is removed on every return path.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Upload, error) {
	staged, err := s.staging.Stage(req.Folder, req.Filename, req.Body)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		if err := staged.Remove(); err != nil {
			log.Printf("file: %v", err)
		}
	}()

	f, err := staged.Open()
	if err != nil {
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	if err := s.store.Put(ctx, staged.Original, f, staged.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("relay upload: %w", err)
	}

	u := &Upload{
		ID:          uuid.New().String(),
		Folder:      req.Folder,
		ObjectKey:   staged.Original,
		StagedName:  staged.Name,
		SizeBytes:   staged.Size,
		ContentType: req.ContentType,
		CreatedAt:   time.Now().UTC(),
	}

	// The object is stored; a ledger failure does not undo that.
	if s.ledger != nil {
		if err := s.ledger.Record(ctx, u); err != nil {
			log.Printf("file: record upload %q: %v", u.ObjectKey, err)
		}
	}

	return u, nil
}

// Download checks that the object exists and opens it. The caller closes the reader.
func (s *Service) Download(ctx context.Context, filename string) (storage.ObjectInfo, io.ReadCloser, error) {
	info, err := s.store.Stat(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ObjectInfo{}, nil, ErrNotFound
		}
		return storage.ObjectInfo{}, nil, fmt.Errorf("stat %q: %w", filename, err)
	}

	body, err := s.store.Get(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ObjectInfo{}, nil, ErrNotFound
		}
		return storage.ObjectInfo{}, nil, fmt.Errorf("get %q: %w", filename, err)
	}
	return info, body, nil
}

// Recent lists the latest recorded uploads.
func (s *Service) Recent(ctx context.Context, limit int) ([]Upload, error) {
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	return s.ledger.Recent(ctx, limit)
}

// IsNotFound returns true when the error indicates the object does not exist.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
