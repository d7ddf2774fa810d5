package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	Role string `gorm:"not null"` // "plumber" or "dealer"
	Name string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, constraint)
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

// InsertWithPlumber creates the user account and its plumber profile in one
// transaction. The PID is the next unclaimed 4-digit display code; two
// concurrent signups can compute the same one, so the loser of that race
// rolls back on the pid unique index and retries with a fresh code.
func (d *UserDAO) InsertWithPlumber(ctx context.Context, user User) (User, Plumber, error) {
	var lastErr error

	for attempt := 0; attempt < 5; attempt++ {
		createdUser, createdPlumber, err := d.insertWithPlumberOnce(ctx, user)
		if err == nil {
			return createdUser, createdPlumber, nil
		}
		if !isUniqueViolation(err, `unique constraint "uni_plumbers_pid"`) {
			return User{}, Plumber{}, err
		}

		lastErr = err
	}

	return User{}, Plumber{}, lastErr
}

func (d *UserDAO) insertWithPlumberOnce(ctx context.Context, user User) (User, Plumber, error) {
	var plumber Plumber

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err, `unique constraint "uni_users_email"`) {
				return ErrUserEmailExists
			}

			return err
		}

		pid, err := nextPID(tx)
		if err != nil {
			return err
		}

		plumber = Plumber{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
			PID:    pid,
		}

		return tx.Create(&plumber).Error
	})
	if err != nil {
		return User{}, Plumber{}, err
	}

	return user, plumber, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}
