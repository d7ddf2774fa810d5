package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRedemptionNotFound       = errors.New("redemption not found")
	ErrRedemptionStatusConflict = errors.New("redemption status changed concurrently")
	ErrInvalidRedemptionCode    = errors.New("invalid or expired redemption code")
)

type Redemption struct {
	ID        uint `gorm:"primaryKey"`
	PlumberID uint `gorm:"index;not null"`
	Plumber   Plumber

	RewardName string `gorm:"not null"`
	TokensUsed int    `gorm:"not null"`
	Status     string `gorm:"not null"` // "pending", "approved" or "delivered"

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RedemptionCode is a dealer-issued one-time code gating redemptions.
// Only the SHA-256 of the code is stored.
type RedemptionCode struct {
	ID       uint   `gorm:"primaryKey"`
	CodeHash string `gorm:"uniqueIndex;not null"`
	Used     bool   `gorm:"not null;default:false"`

	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

type RedemptionDAO struct {
	db *gorm.DB
}

func NewRedemptionDAO(db *gorm.DB) *RedemptionDAO {
	return &RedemptionDAO{
		db: db,
	}
}

func (d *RedemptionDAO) FindByID(ctx context.Context, id uint) (Redemption, error) {
	var redemption Redemption

	result := d.db.WithContext(ctx).First(&redemption, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Redemption{}, ErrRedemptionNotFound
		}

		return Redemption{}, result.Error
	}

	return redemption, nil
}

func (d *RedemptionDAO) FindByPlumberID(ctx context.Context, plumberID uint) ([]Redemption, error) {
	var redemptions []Redemption

	result := d.db.WithContext(ctx).
		Where("plumber_id = ?", plumberID).
		Order("created_at DESC").
		Find(&redemptions)
	if result.Error != nil {
		return nil, result.Error
	}

	return redemptions, nil
}

func (d *RedemptionDAO) FindAll(ctx context.Context) ([]Redemption, error) {
	var redemptions []Redemption

	result := d.db.WithContext(ctx).
		Preload("Plumber").
		Order("created_at DESC").
		Find(&redemptions)
	if result.Error != nil {
		return nil, result.Error
	}

	return redemptions, nil
}

// AdvanceStatus moves the redemption from one status to another with the
// previous status as a guard, so a transition raced by another dealer
// session fails instead of silently overwriting.
func (d *RedemptionDAO) AdvanceStatus(ctx context.Context, id uint, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Redemption{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := d.db.WithContext(ctx).Model(&Redemption{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrRedemptionNotFound
		}

		return ErrRedemptionStatusConflict
	}

	return nil
}

func (d *RedemptionDAO) InsertCode(ctx context.Context, codeHash string, expiresAt time.Time) error {
	code := RedemptionCode{
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
	}

	return d.db.WithContext(ctx).Create(&code).Error
}

// consumeCode marks the code used inside the caller's transaction. The
// guard on "used" makes a code single-use even under concurrent redeems.
func consumeCode(tx *gorm.DB, codeHash string) error {
	result := tx.Model(&RedemptionCode{}).
		Where("code_hash = ? AND used = ? AND expires_at > ?", codeHash, false, time.Now()).
		Update("used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidRedemptionCode
	}

	return nil
}
