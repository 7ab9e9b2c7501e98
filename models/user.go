package models

import "github.com/octabyte/caisse-gommon/enums"

type User struct {
	ID     uint64     `json:"id"`
	Nom    string     `json:"nom"`
	Prenom string     `json:"prenom"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	Solde  *float64   `json:"solde,omitempty"`
	Actif  *bool      `json:"actif,omitempty"`

	DateCreation     string `json:"date_creation,omitempty"`
	DateModification string `json:"date_modification,omitempty"`
}

func (u User) FullName() string {
	switch {
	case u.Prenom == "":
		return u.Nom
	case u.Nom == "":
		return u.Prenom
	default:
		return u.Prenom + " " + u.Nom
	}
}
