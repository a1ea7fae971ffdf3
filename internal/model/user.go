package model

import (
	"time"

	"gorm.io/gorm"
)

// User holds one record per verified external identity. The minimal row
// written at first login carries only the subject id, phone and verified
// flag; profile completion fills the rest.
type User struct {
	gorm.Model
	Subject           string     `gorm:"column:subject;unique;not null"`
	Phone             string     `gorm:"column:phone;unique;not null"`
	IsVerified        bool       `gorm:"column:is_verified;default:false;not null"`
	FullName          string     `gorm:"column:full_name"`
	Email             string     `gorm:"column:email;index:idx_users_email,where:email <> ''"`
	DateOfBirth       *time.Time `gorm:"column:date_of_birth"`
	Gender            string     `gorm:"column:gender"`
	SchoolName        string     `gorm:"column:school_name"`
	ClassName         string     `gorm:"column:class_name"`
	Address           string     `gorm:"column:address"`
	City              string     `gorm:"column:city"`
	State             string     `gorm:"column:state"`
	Pincode           string     `gorm:"column:pincode"`
	FatherName        string     `gorm:"column:father_name"`
	MotherName        string     `gorm:"column:mother_name"`
	IsProfileComplete bool       `gorm:"column:is_profile_complete;default:false;not null"`
	XP                int64      `gorm:"column:xp;default:0;not null"`
	LastLoginAt       time.Time  `gorm:"column:last_login_at"`
}
