package domain

import "time"

type User struct {
	ID         UserID    `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username" json:"username"`
	FullName   string    `gorm:"type:varchar(200)" json:"fullName"`
	Email      string    `gorm:"type:varchar(254)" json:"email"`
	Role       Role      `gorm:"type:varchar(16);not null;index:idx_users_role" json:"role"`
	IsDisabled bool      `gorm:"not null;default:false" json:"isDisabled"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// DisplayName is the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type PasswordCredential struct {
	ID          CredentialID `gorm:"type:uuid;primaryKey"`
	UserID      UserID       `gorm:"type:uuid;not null;uniqueIndex:ux_pwd_user"`
	Algo        string       `gorm:"type:text;not null"`
	Hash        []byte       `gorm:"not null"`
	Salt        []byte       `gorm:"not null"`
	ParamsJSON  []byte       `gorm:"not null"`
	PasswordVer int          `gorm:"not null;default:1"`
	CreatedAt   time.Time    `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

func (PasswordCredential) TableName() string { return "password_credentials" }

func (p *PasswordCredential) GetAlgo() string       { return p.Algo }
func (p *PasswordCredential) GetHash() []byte       { return p.Hash }
func (p *PasswordCredential) GetSalt() []byte       { return p.Salt }
func (p *PasswordCredential) GetParamsJSON() []byte { return p.ParamsJSON }
func (p *PasswordCredential) GetPasswordVer() int   { return p.PasswordVer }
