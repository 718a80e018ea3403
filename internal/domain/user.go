package domain

import "time"

// Gender es la enumeración fija aceptada en el registro.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender indica si el valor pertenece a la enumeración.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	DOB          string    `json:"dob"`
	Gender       string    `json:"gender"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
