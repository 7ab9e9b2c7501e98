package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/models"
	"github.com/octabyte/caisse-gommon/stubbackend"
)

// caisse-stub serves an in-memory Caisse API seeded with one account per
// role, all sharing the same password.
func main() {
	addr := flag.String("addr", ":8000", "listen address")
	password := flag.String("password", "secret", "password of the seeded accounts")
	flag.Parse()

	backend := stubbackend.New(stubbackend.WithLogLevel(log.INFO))
	seed(backend, *password)

	log.Infof("caisse stub listening on %s (base URL http://localhost%s/api)", *addr, *addr)
	if err := backend.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func seed(b *stubbackend.Backend, password string) {
	solde := 0.0
	b.AddUser(models.User{Nom: "Fall", Prenom: "Ibrahima", Email: "superadmin@caisse.local", Role: enums.RoleSuperAdmin}, password)
	b.AddUser(models.User{Nom: "Diop", Prenom: "Awa", Email: "admin@caisse.local", Role: enums.RoleAdmin}, password)
	cashier := b.AddUser(models.User{Nom: "Ndiaye", Prenom: "Moussa", Email: "caissier@caisse.local", Role: enums.RoleCashier}, password)
	b.AddUser(models.User{Nom: "Sarr", Prenom: "Ali", Email: "client@caisse.local", Role: enums.RoleClient, Solde: &solde}, password)

	b.AddClient(models.Client{Nom: "Sarr", Prenom: "Ali", Email: "client@caisse.local", Solde: 0})
	b.AddClient(models.Client{Nom: "Ba", Prenom: "Aminata", Email: "aminata@caisse.local", Solde: 25000})

	payment := b.AddPayment(cashier.ID, models.Payment{
		Nom:            "Ba",
		Prenom:         "Aminata",
		Montant:        25000,
		MontantLettres: "vingt-cinq mille",
		NumeroPolice:   "POL-0001",
		ModePaiement:   enums.PaymentModeCash,
	})
	b.AddDeletionRequest(cashier.ID, payment.ID, "Paiement saisi en double")
}
