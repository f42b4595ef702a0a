package sqlstore

import (
	"context"
	"strings"

	"userstore/internal/domain/entity"
	"userstore/internal/domain/repository"
	"userstore/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// db is usually a transaction handed out by the transaction manager.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new row and copies the generated id back into user.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return translateWriteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.BirthDate = userM.BirthDate

	return nil
}

// Update overwrites every mutable column, so an unspecified sex clears the stored value.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).
		Model(userM).
		Select(model.UserColumns).
		Updates(userM)
	if result.Error != nil {
		return translateWriteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	user.BirthDate = userM.BirthDate

	return nil
}

// Delete removes the row with the given id.
func (repo *userRepository) Delete(ctx context.Context, id uint64) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.UserModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// FindByID retrieves a single user by id.
func (repo *userRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).Where("id = ?", id).Take(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindAll retrieves every user ordered by id.
func (repo *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	var userMs []*model.UserModel

	if err := repo.db.WithContext(ctx).Order("id").Find(&userMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find users")
	}

	return toUserDomainList(userMs), nil
}

// FindBySex retrieves the users stored with the given sex.
func (repo *userRepository) FindBySex(ctx context.Context, sex entity.Sex) ([]*entity.User, error) {
	var userMs []*model.UserModel

	err := repo.db.WithContext(ctx).
		Where("sex_type = ?", sex.String()).
		Order("id").
		Find(&userMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find users by sex")
	}

	return toUserDomainList(userMs), nil
}

// FindByNameContains matches term literally against first and last name.
// Case sensitivity follows the column collation.
func (repo *userRepository) FindByNameContains(ctx context.Context, term string) ([]*entity.User, error) {
	var userMs []*model.UserModel

	pattern := "%" + escapeLike(term) + "%"
	err := repo.db.WithContext(ctx).
		Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern).
		Order("id").
		Find(&userMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find users by name")
	}

	return toUserDomainList(userMs), nil
}

// Count returns the number of stored users.
func (repo *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}

	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// --- Mapper Functions ---

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:        data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		BirthDate: entity.DateOnly(data.BirthDate),
	}
	if data.SexType != nil {
		user.Sex = entity.Sex(*data.SexType)
	}

	return user
}

func toUserDomainList(data []*model.UserModel) []*entity.User {
	users := make([]*entity.User, 0, len(data))
	for _, userM := range data {
		users = append(users, toUserDomain(userM))
	}

	return users
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	userM := &model.UserModel{
		ID:        data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		BirthDate: entity.DateOnly(data.BirthDate),
	}
	if data.Sex.IsSpecified() {
		sex := data.Sex.String()
		userM.SexType = &sex
	}

	return userM
}
