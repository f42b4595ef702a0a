// Package model holds the GORM persistence models. They mirror table layout and are mapped
// to domain entities by the repositories; nothing outside infra/persistence imports them.
package model

import (
	"time"
)

// UserModel mirrors the 'users' table. The database generates IDs by auto-increment.
type UserModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	FirstName string    `gorm:"column:first_name;type:varchar(50);not null"`
	LastName  string    `gorm:"column:last_name;type:varchar(50);not null"`
	BirthDate time.Time `gorm:"column:birth_date;type:date;not null"`
	SexType   *string   `gorm:"column:sex_type;type:varchar(6)"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// UserColumns lists the mutable columns overwritten by an update, in table order.
var UserColumns = []string{"first_name", "last_name", "birth_date", "sex_type"}

// AllModels lists every model handled by schema sync.
func AllModels() []any {
	return []any{&UserModel{}}
}
