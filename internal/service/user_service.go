package service

import (
	"context"
	"errors"
	"log/slog"

	"task-manager/internal/model"
	"task-manager/internal/optional"
	"task-manager/internal/password"
	"task-manager/internal/repository"
)

// UserCreate is the payload for a new user.
type UserCreate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UserUpdate is a user change-set.
type UserUpdate struct {
	FirstName optional.Field[string] `json:"firstName"`
	LastName  optional.Field[string] `json:"lastName"`
	Email     optional.Field[string] `json:"email"`
	Password  optional.Field[string] `json:"password"`
}

// UserService manages users.
type UserService struct {
	store  *repository.Store
	hasher password.Hasher
	guard  *DeleteGuard
	log    *slog.Logger
}

func NewUserService(store *repository.Store, hasher password.Hasher, log *slog.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, guard: NewDeleteGuard(store, log), log: log}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.Users.ListAll(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(KindUser, id)
	}
	return user, err
}

// GetByEmail returns the user with the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ReferenceNotFoundError{Kind: KindUser, Key: email}
	}
	return user, err
}

// Authenticate returns the user when email and password match.
func (s *UserService) Authenticate(ctx context.Context, email, plain string) (*model.User, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, plain) {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, in UserCreate) (*model.User, error) {
	var v validator
	v.required("firstName", in.FirstName)
	v.required("lastName", in.LastName)
	v.email("email", in.Email)
	v.length("password", in.Password, passwordMinLen, 0)
	if err := v.err(); err != nil {
		return nil, err
	}

	// hashed before the transaction so bcrypt does not hold the write lock
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureUnique(ctx, tx.Users.FindByEmail, in.Email, 0, "user email"); err != nil {
			return err
		}
		return duplicate(tx.Users.Create(ctx, &user), "user email")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", "id", user.ID)
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserUpdate) (*model.User, error) {
	var v validator
	present(&v, "firstName", in.FirstName, func(name string) { v.required("firstName", name) })
	present(&v, "lastName", in.LastName, func(name string) { v.required("lastName", name) })
	present(&v, "email", in.Email, func(email string) { v.email("email", email) })
	present(&v, "password", in.Password, func(pw string) { v.length("password", pw, passwordMinLen, 0) })
	if err := v.err(); err != nil {
		return nil, err
	}

	var hash string
	if pw, ok := in.Password.Get(); ok {
		h, err := s.hasher.Hash(pw)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var updated model.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Users.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(KindUser, id)
		}
		if err != nil {
			return err
		}

		updated = mergeUser(*current, in, hash)
		if updated == *current {
			return nil
		}
		if updated.Email != current.Email {
			if err := ensureUnique(ctx, tx.Users.FindByEmail, updated.Email, id, "user email"); err != nil {
				return err
			}
		}
		return duplicate(tx.Users.Save(ctx, &updated), "user email")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user updated", "id", id)
	return &updated, nil
}

// Delete removes the user unless a task is assigned to them.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.guard.Delete(ctx, KindUser, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "id", id)
	return nil
}

// mergeUser applies a validated change-set. hash replaces the stored
// password hash when the change-set carries a password.
func mergeUser(user model.User, in UserUpdate, hash string) model.User {
	if v, ok := in.FirstName.Get(); ok {
		user.FirstName = v
	}
	if v, ok := in.LastName.Get(); ok {
		user.LastName = v
	}
	if v, ok := in.Email.Get(); ok {
		user.Email = v
	}
	if in.Password.IsSet() {
		user.PasswordHash = hash
	}
	return user
}
