package dao

import (
	"errors"

	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Plumber{},
		&TokenTransaction{},
		&Redemption{},
		&RedemptionCode{},
	)
}

// SeedDealer promotes the configured dealer account to the dealer role.
// The account itself is created through the normal signup flow; until it
// exists there is nothing to promote.
func SeedDealer(db *gorm.DB, email string) error {
	if email == "" {
		return nil
	}

	var user User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	if user.Role == "dealer" {
		return nil
	}

	return db.Model(&user).Update("role", "dealer").Error
}
