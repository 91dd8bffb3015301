package models

import "terena/src/types"

type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`

	types.Timestamps
}
