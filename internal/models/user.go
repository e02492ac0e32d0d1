package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID                uint64     `gorm:"primarykey" json:"id"`
	Name              string     `gorm:"type:varchar(50);not null" json:"name"`
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"type:varchar(255);not null" json:"-"`
	Bio               string     `gorm:"type:varchar(500)" json:"bio"`
	Avatar            string     `gorm:"type:varchar(500)" json:"avatar"`
	Role              UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// Relations
	Tasks []Task `gorm:"foreignKey:UserID" json:"-"`
}
