// classnow/models/user.go

package models

import "time"

// User представляет учетную запись в базе данных.
// Пароль хранится только в виде bcrypt-хэша и никогда не отдается наружу.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"displayName" gorm:"not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	PhotoURL    string    `json:"photoUrl"`
	IsBanned    bool      `json:"isBanned" gorm:"default:false"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserResponse - структура для отправки данных пользователя на фронтенд.
// Защищает от случайной утечки хэша пароля и служебных полей.
type UserResponse struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoUrl"`
}

// ToResponse собирает безопасное представление пользователя.
func (u User) ToResponse() UserResponse {
	photo := u.PhotoURL
	if photo == "" {
		photo = "/static/placeholder.png"
	}
	return UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhotoURL:    photo,
	}
}

// SignupInput используется для привязки данных из JSON-запроса при регистрации.
type SignupInput struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

// LoginInput используется для привязки данных из JSON-запроса при входе.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
