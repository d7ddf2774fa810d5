package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrPlumberNotFound    = errors.New("plumber not found")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

type Plumber struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`

	Email string `gorm:"unique;not null"`
	Name  string `gorm:"not null"`
	PID   string `gorm:"unique;not null"` // 4-digit display code, starts at 1001

	Tokens        int `gorm:"not null;default:0"`
	TotalEarned   int `gorm:"not null;default:0"`
	TotalRedeemed int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TokenTransaction struct {
	ID        uint `gorm:"primaryKey"`
	PlumberID uint `gorm:"index;not null"`
	Plumber   Plumber

	Type        string `gorm:"not null"` // "earned" or "redeemed"
	Tokens      int    `gorm:"not null"`
	Description string

	CreatedAt time.Time
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}

type PlumberDAO struct {
	db *gorm.DB
}

func NewPlumberDAO(db *gorm.DB) *PlumberDAO {
	return &PlumberDAO{
		db: db,
	}
}

// nextPID returns the smallest unclaimed display code, starting at 1001.
func nextPID(tx *gorm.DB) (string, error) {
	var pid string

	err := tx.Raw(
		`SELECT CAST(COALESCE(MAX(CAST(pid AS INTEGER)), 1000) + 1 AS TEXT) FROM plumbers`,
	).Scan(&pid).Error
	if err != nil {
		return "", err
	}

	return pid, nil
}

func (d *PlumberDAO) FindByID(ctx context.Context, id uint) (Plumber, error) {
	var plumber Plumber

	result := d.db.WithContext(ctx).First(&plumber, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Plumber{}, ErrPlumberNotFound
		}

		return Plumber{}, result.Error
	}

	return plumber, nil
}

func (d *PlumberDAO) FindByUserID(ctx context.Context, userID uint) (Plumber, error) {
	var plumber Plumber

	result := d.db.WithContext(ctx).First(&plumber, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Plumber{}, ErrPlumberNotFound
		}

		return Plumber{}, result.Error
	}

	return plumber, nil
}

func (d *PlumberDAO) FindAll(ctx context.Context) ([]Plumber, error) {
	var plumbers []Plumber

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&plumbers)
	if result.Error != nil {
		return nil, result.Error
	}

	return plumbers, nil
}

// Credit adds tokens to the plumber's balance and appends the matching
// ledger entry. Both writes commit or roll back together; the increments
// run in SQL so concurrent credits never lose an update.
func (d *PlumberDAO) Credit(ctx context.Context, plumberID uint, amount int, description string) (Plumber, error) {
	var plumber Plumber

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Plumber{}).
			Where("id = ?", plumberID).
			Updates(map[string]interface{}{
				"tokens":       gorm.Expr("tokens + ?", amount),
				"total_earned": gorm.Expr("total_earned + ?", amount),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPlumberNotFound
		}

		transaction := TokenTransaction{
			PlumberID:   plumberID,
			Type:        "earned",
			Tokens:      amount,
			Description: description,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		return tx.First(&plumber, plumberID).Error
	})
	if err != nil {
		return Plumber{}, err
	}

	return plumber, nil
}

// Redeem deducts the reward cost, appends the ledger entry, creates the
// pending redemption row and consumes the one-time code, all in one
// transaction. The deduction is guarded by the current balance in SQL, so
// a stale client-side balance can never overdraw the account.
func (d *PlumberDAO) Redeem(ctx context.Context, plumberID uint, rewardName string, tokenCost int, codeHash string) (Redemption, error) {
	var redemption Redemption

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := consumeCode(tx, codeHash); err != nil {
			return err
		}

		result := tx.Model(&Plumber{}).
			Where("id = ? AND tokens >= ?", plumberID, tokenCost).
			Updates(map[string]interface{}{
				"tokens":         gorm.Expr("tokens - ?", tokenCost),
				"total_redeemed": gorm.Expr("total_redeemed + ?", tokenCost),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&Plumber{}).Where("id = ?", plumberID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ErrPlumberNotFound
			}

			return ErrInsufficientTokens
		}

		redemption = Redemption{
			PlumberID:  plumberID,
			RewardName: rewardName,
			TokensUsed: tokenCost,
			Status:     "pending",
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}

		transaction := TokenTransaction{
			PlumberID:   plumberID,
			Type:        "redeemed",
			Tokens:      tokenCost,
			Description: "Redeemed " + rewardName,
		}

		return tx.Create(&transaction).Error
	})
	if err != nil {
		return Redemption{}, err
	}

	return redemption, nil
}

func (d *PlumberDAO) FindTransactionsByPlumberID(ctx context.Context, plumberID uint) ([]TokenTransaction, error) {
	var transactions []TokenTransaction

	result := d.db.WithContext(ctx).
		Where("plumber_id = ?", plumberID).
		Order("created_at DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *PlumberDAO) FindAllTransactions(ctx context.Context) ([]TokenTransaction, error) {
	var transactions []TokenTransaction

	result := d.db.WithContext(ctx).
		Preload("Plumber").
		Order("created_at DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}
