package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// UserRepository reads store staff and resolves them as audit actors.
type UserRepository interface {
	audit.UserDirectory
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return database.Conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := database.Conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Lookup(ctx context.Context, id uint) (audit.Actor, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return audit.Actor{}, err
	}
	return actorFromUser(*user), nil
}

// Fallback returns the first superuser by id, else the first user by id.
func (r *userRepository) Fallback(ctx context.Context) (audit.Actor, error) {
	var user models.User
	err := database.Conn(ctx, r.db).Where("is_superuser = ?", true).Order("id ASC").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = database.Conn(ctx, r.db).Order("id ASC").First(&user).Error
	}
	if err != nil {
		return audit.Actor{}, err
	}
	return actorFromUser(user), nil
}

func actorFromUser(user models.User) audit.Actor {
	id := user.ID
	name := strings.TrimSpace(user.Username)
	if name == "" {
		name = strings.TrimSpace(user.Name)
	}
	return audit.Actor{ID: &id, Name: name}
}
