package models

type Client struct {
	ID                  uint64  `json:"id"`
	Nom                 string  `json:"nom"`
	Prenom              string  `json:"prenom"`
	Email               string  `json:"email"`
	Solde               float64 `json:"solde"`
	DerniereTransaction string  `json:"derniere_transaction,omitempty"`
}

// DeleteClientRequest is the body of a client deletion; the backend refuses
// deletions without a justification.
type DeleteClientRequest struct {
	Justification string `json:"justification" validate:"required"`
}
