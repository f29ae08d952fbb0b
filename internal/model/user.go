package model

// swagger:model User
type User struct {
	BaseModel
	Username     string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"is_admin"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}
