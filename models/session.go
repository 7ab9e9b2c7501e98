package models

// Session is what the backend hands back on login and registration.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required"`
	MotDePasse string `json:"mot_de_passe" validate:"required"`
}

type RegisterRequest struct {
	Nom        string `json:"nom" validate:"required"`
	Prenom     string `json:"prenom" validate:"required"`
	Email      string `json:"email" validate:"required"`
	MotDePasse string `json:"mot_de_passe" validate:"required"`
}
