package services

import (
	"errors"
	"fmt"
	"strings"

	"healthylife/config"
	"healthylife/models"
	"healthylife/utils"

	"gorm.io/gorm"
)

// RegisterUser validates the signup input, stores the user with a bcrypt
// hash and creates the default settings row.
func RegisterUser(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidEmail(email) {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalid)
	}
	if !utils.ValidPassword(password) {
		return nil, fmt.Errorf("%w: password needs at least 8 characters with letters and digits", ErrInvalid)
	}

	var existing models.User
	err := config.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrDuplicate)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{Email: email, Password: hashed, Name: strings.TrimSpace(name)}
	if err := config.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	// every account gets a settings row so later reads never miss
	settings := models.UserSettings{UserID: user.ID, UnitSystem: "metric", ShowHydration: true}
	if err := config.DB.Create(&settings).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// AuthenticateUser checks the credentials and returns a signed token.
// Unknown email and wrong password are deliberately the same error.
func AuthenticateUser(email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", nil, ErrBadCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// ChangePassword verifies the current password before storing a new one.
func ChangePassword(userID uint, current, next string) error {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return err
	}

	if !utils.CheckPasswordHash(current, user.Password) {
		return ErrBadCredentials
	}
	if !utils.ValidPassword(next) {
		return fmt.Errorf("%w: password needs at least 8 characters with letters and digits", ErrInvalid)
	}

	hashed, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	user.Password = hashed
	return config.DB.Save(&user).Error
}
