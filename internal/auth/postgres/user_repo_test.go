// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftboard/driftboard/internal/auth"
)

func testUser() *auth.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &auth.User{
		ID:           ulid.Make(),
		Name:         "Ferris",
		Email:        "ferris@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, user *auth.User)
		wantErr   error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: auth.ErrDuplicateEmail,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			user := testUser()
			tt.setupMock(mock, user)

			repo := NewUserRepository(mock)
			err = repo.Create(context.Background(), user)

			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.wantErr, auth.ErrDuplicateEmail):
				require.ErrorIs(t, err, auth.ErrDuplicateEmail)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := testUser()
		rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(want.ID.String(), want.Name, want.Email, want.PasswordHash, want.CreatedAt, want.UpdatedAt)
		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs(want.ID.String()).
			WillReturnRows(rows)

		repo := NewUserRepository(mock)
		got, err := repo.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByID(context.Background(), id)
		require.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id in row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		now := time.Now().UTC()
		rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("not-a-ulid", "Ferris", "ferris@example.com", "hash", now, now)
		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs(id.String()).
			WillReturnRows(rows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByID(context.Background(), id)
		require.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Run("normalizes the argument", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := testUser()
		rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(want.ID.String(), want.Name, want.Email, want.PasswordHash, want.CreatedAt, want.UpdatedAt)
		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs("ferris@example.com").
			WillReturnRows(rows)

		repo := NewUserRepository(mock)
		got, err := repo.GetByEmail(context.Background(), "  FERRIS@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	const newHash = "$argon2id$v=19$m=65536,t=1,p=4$bmV3c2FsdA$bmV3a2V5"

	t.Run("updates the stored hash", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(id.String(), newHash, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewUserRepository(mock)
		require.NoError(t, repo.UpdatePassword(context.Background(), id, newHash))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(id.String(), newHash, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewUserRepository(mock)
		err = repo.UpdatePassword(context.Background(), id, newHash)
		require.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(id.String(), newHash, pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		repo := NewUserRepository(mock)
		err = repo.UpdatePassword(context.Background(), id, newHash)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_List(t *testing.T) {
	t.Run("multiple users in creation order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		first := testUser()
		second := testUser()
		second.Email = "second@example.com"

		rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(first.ID.String(), first.Name, first.Email, first.PasswordHash, first.CreatedAt, first.UpdatedAt).
			AddRow(second.ID.String(), second.Name, second.Email, second.PasswordHash, second.CreatedAt, second.UpdatedAt)
		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WillReturnRows(rows)

		repo := NewUserRepository(mock)
		got, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.Email, got[0].Email)
		assert.Equal(t, second.Email, got[1].Email)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"})
		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WillReturnRows(rows)

		repo := NewUserRepository(mock)
		got, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
