package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write hits a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferenced is returned when a write breaks a foreign key.
	ErrReferenced = errors.New("foreign key violated")
)

// translate maps gorm's translated driver errors onto the repository errors
// while keeping the original message in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrReferenced, err)
	default:
		return err
	}
}

// Store bundles the per-entity repositories over one connection or transaction.
type Store struct {
	db       *gorm.DB
	Users    *UserRepository
	Statuses *TaskStatusRepository
	Labels   *LabelRepository
	Tasks    *TaskRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Statuses: NewTaskStatusRepository(db),
		Labels:   NewLabelRepository(db),
		Tasks:    NewTaskRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// Calls on a Store that is already transactional nest as savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
