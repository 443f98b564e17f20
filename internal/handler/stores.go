package handler

import (
	"context"

	"github.com/iliyamo/document-manager/internal/model"
)

// Store interfaces consumed by the handlers.  The MySQL repositories satisfy
// them; tests substitute in-memory fakes.  Keeping the interfaces on the
// consumer side means a handler only states the operations it actually uses.

// UserStore is the persistence surface for user accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetActiveByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetActiveByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
}

// DocumentStore is the persistence surface for documents and their files.
type DocumentStore interface {
	Create(ctx context.Context, d *model.Document) error
	AddFiles(ctx context.Context, documentID string, files []model.DocumentFile) error
	Get(ctx context.Context, id string) (model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	Update(ctx context.Context, d *model.Document) error
	Delete(ctx context.Context, id string) error
}

// IngestionStore is the persistence surface for ingestion jobs as seen by
// the HTTP layer; the dispatcher's compare-and-swap transitions live on a
// separate interface in the service package.
type IngestionStore interface {
	Create(ctx context.Context, j *model.IngestionJob) error
	Get(ctx context.Context, id string) (model.IngestionJob, error)
	List(ctx context.Context) ([]model.IngestionJob, error)
	Save(ctx context.Context, j *model.IngestionJob) error
}
