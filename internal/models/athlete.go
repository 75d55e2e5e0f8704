package models

type Athlete struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Age          int    `json:"age"`
	PasswordHash string `json:"-"` // don’t expose hash
}
