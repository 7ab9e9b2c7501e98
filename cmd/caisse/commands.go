package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/octabyte/caisse-gommon/caisse"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/models"
	"github.com/octabyte/caisse-gommon/session"
	"github.com/octabyte/caisse-gommon/utils"
)

const reloginMessage = "session expired, please log in again (caisse login)"

var errNotLoggedIn = errors.New("not logged in (caisse login)")

// reloginNavigator stands in for the login view: the CLI cannot redirect, so
// it tells the operator to log in again.
type reloginNavigator struct {
	out io.Writer
}

func (n reloginNavigator) Navigate(_ context.Context, route string) {
	if route == enums.LoginRoute {
		fmt.Fprintln(n.out, reloginMessage)
	}
}

type app struct {
	store   *session.Store
	service *caisse.Service
	out     io.Writer
	errOut  io.Writer
}

type command struct {
	usage string
	auth  bool
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":             {"-email E -password P", false, (*app).login},
	"register":          {"-nom N -prenom P -email E -password P", false, (*app).register},
	"logout":            {"", false, (*app).logout},
	"whoami":            {"", true, (*app).whoami},
	"clients":           {"", true, (*app).clients},
	"delete-client":     {"-id ID -justification TEXT", true, (*app).deleteClient},
	"daily-report":      {"[-date YYYY-MM-DD] [-mode espece|tpe|cheque|tous]", true, (*app).dailyReport},
	"monthly-report":    {"[-month M] [-year Y] [-mode espece|tpe|cheque|tous]", true, (*app).monthlyReport},
	"pay":               {"-nom N -prenom P -montant M -lettres TEXT -police NUM -mode espece|tpe|cheque [-piece NUM]", true, (*app).pay},
	"payments":          {"[-page N] [-limit N] [-search TEXT]", true, (*app).payments},
	"activities":        {"[-date YYYY-MM-DD] [-caissier ID] [-action ACTION]", true, (*app).activities},
	"stats":             {"", true, (*app).stats},
	"deletion-requests": {"", true, (*app).deletionRequests},
	"review":            {"-id ID -decision approuve|refuse", true, (*app).review},
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return errors.New("missing command")
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	if cmd.auth && !a.store.IsAuthenticated() {
		return errNotLoggedIn
	}

	return cmd.run(a, ctx, args[1:])
}

func (a *app) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.errOut, "usage: caisse <command> [flags]")
	for _, name := range names {
		fmt.Fprintf(a.errOut, "  %-18s %s\n", name, commands[name].usage)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.Login(ctx, *email, *password); err != nil {
		return err
	}
	return a.printSession("Connecté")
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	req := models.RegisterRequest{}
	fs.StringVar(&req.Nom, "nom", "", "last name")
	fs.StringVar(&req.Prenom, "prenom", "", "first name")
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.MotDePasse, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.Register(ctx, req); err != nil {
		return err
	}
	return a.printSession("Compte créé")
}

func (a *app) logout(ctx context.Context, _ []string) error {
	a.store.Logout(ctx)
	fmt.Fprintln(a.out, "Déconnecté")
	return nil
}

func (a *app) whoami(ctx context.Context, _ []string) error {
	a.store.RefreshSession(ctx)
	if !a.store.IsAuthenticated() {
		return errNotLoggedIn
	}
	return a.printSession("Session")
}

func (a *app) printSession(title string) error {
	snap := a.store.Snapshot()
	if snap.User == nil {
		return errNotLoggedIn
	}

	fmt.Fprintf(a.out, "%s: %s <%s> (%s)\n", title, snap.User.FullName(), snap.User.Email, snap.User.Role)
	if snap.User.Solde != nil {
		fmt.Fprintf(a.out, "Solde: %s\n", utils.FormatXOF(*snap.User.Solde))
	}
	fmt.Fprintf(a.out, "Accueil: %s\n", enums.LandingRoute(snap.User.Role))
	return nil
}

func (a *app) clients(ctx context.Context, _ []string) error {
	clients, err := a.service.Clients(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOM\tEMAIL\tSOLDE\tDERNIÈRE TRANSACTION")
	for _, c := range clients {
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\n", c.ID, c.Prenom, c.Nom, c.Email, utils.FormatXOF(c.Solde), c.DerniereTransaction)
	}
	return w.Flush()
}

func (a *app) deleteClient(ctx context.Context, args []string) error {
	fs := a.flags("delete-client")
	id := fs.Uint64("id", 0, "client id")
	justification := fs.String("justification", "", "reason for the deletion")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("-id is required")
	}

	if err := a.service.DeleteClient(ctx, *id, *justification); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Client %d supprimé\n", *id)
	return nil
}

func (a *app) dailyReport(ctx context.Context, args []string) error {
	fs := a.flags("daily-report")
	date := fs.String("date", "", "report date (YYYY-MM-DD), today by default")
	mode := fs.String("mode", string(enums.PaymentModeAll), "payment mode filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var day time.Time
	if *date != "" {
		parsed, err := utils.ParseReportDate(*date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		day = parsed
	}

	report, err := a.service.DailyReport(ctx, day, enums.PaymentMode(*mode))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Rapport du %s (%s)\n", report.Date, enums.PaymentMode(*mode).Label())
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Crédits\t%s\n", utils.FormatXOF(report.TotalCredits))
	fmt.Fprintf(w, "Débits\t%s\n", utils.FormatXOF(report.TotalDebits))
	fmt.Fprintf(w, "Transactions\t%d\n", report.TotalTransactions)
	fmt.Fprintf(w, "Solde total\t%s\n", utils.FormatXOF(report.SoldeTotal))
	writeModeTotals(w, report.TransactionsParMode)
	return w.Flush()
}

func (a *app) monthlyReport(ctx context.Context, args []string) error {
	fs := a.flags("monthly-report")
	month := fs.Int("month", 0, "month (1-12), current month by default")
	year := fs.Int("year", 0, "year, current year by default")
	mode := fs.String("mode", string(enums.PaymentModeAll), "payment mode filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := a.service.MonthlyReport(ctx, *month, *year, enums.PaymentMode(*mode))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Rapport %s/%d (%s)\n", report.Month, report.Year, enums.PaymentMode(*mode).Label())
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Crédits\t%s\n", utils.FormatXOF(report.TotalCredits))
	fmt.Fprintf(w, "Débits\t%s\n", utils.FormatXOF(report.TotalDebits))
	fmt.Fprintf(w, "Transactions\t%d\n", report.TotalTransactions)
	fmt.Fprintf(w, "Clients actifs\t%d\n", report.ClientsActifs)
	writeModeTotals(w, report.TransactionsParMode)
	return w.Flush()
}

func writeModeTotals(w io.Writer, totals *models.ModeTotals) {
	if totals == nil {
		return
	}
	fmt.Fprintf(w, "%s\t%s\n", enums.PaymentModeCash.Label(), utils.FormatXOF(totals.Espece))
	fmt.Fprintf(w, "%s\t%s\n", enums.PaymentModeCard.Label(), utils.FormatXOF(totals.TPE))
	fmt.Fprintf(w, "%s\t%s\n", enums.PaymentModeCheque.Label(), utils.FormatXOF(totals.Cheque))
}

func (a *app) pay(ctx context.Context, args []string) error {
	fs := a.flags("pay")
	req := models.CreatePaymentRequest{}
	fs.StringVar(&req.Nom, "nom", "", "payer last name")
	fs.StringVar(&req.Prenom, "prenom", "", "payer first name")
	fs.Float64Var(&req.Montant, "montant", 0, "amount in F CFA")
	fs.StringVar(&req.MontantLettres, "lettres", "", "amount in words")
	fs.StringVar(&req.NumeroPolice, "police", "", "policy number")
	mode := fs.String("mode", string(enums.PaymentModeCash), "espece, tpe or cheque")
	fs.StringVar(&req.NumeroPiece, "piece", "", "cheque number or card terminal reference")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.ModePaiement = enums.PaymentMode(*mode)

	payment, err := a.service.CreatePayment(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Paiement de %s (%s) enregistré avec succès pour %s %s\n",
		utils.FormatXOF(payment.Montant), payment.MontantLettres, payment.Prenom, payment.Nom)
	return nil
}

func (a *app) payments(ctx context.Context, args []string) error {
	fs := a.flags("payments")
	page := fs.Int("page", caisse.DefaultPage, "page number")
	limit := fs.Int("limit", caisse.DefaultLimit, "payments per page")
	search := fs.String("search", "", "filter on nom, prenom or police number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.service.MyPayments(ctx, *page, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tNOM\tPOLICE\tMODE\tPIÈCE\tMONTANT")
	for _, p := range caisse.FilterPayments(result.Data, *search) {
		fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Date, p.Prenom, p.Nom, p.NumeroPolice, p.ModePaiement.Label(), p.NumeroPiece, utils.FormatXOF(p.Montant))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.LastPage > 0 {
		fmt.Fprintf(a.out, "Page %d/%d (%d paiements)\n", result.CurrentPage, result.LastPage, result.Total)
	}
	return nil
}

func (a *app) activities(ctx context.Context, args []string) error {
	fs := a.flags("activities")
	date := fs.String("date", "", "day (YYYY-MM-DD), today by default")
	cashier := fs.Uint64("caissier", 0, "cashier id")
	action := fs.String("action", string(enums.ActivityAll), "login, logout, paiement_cree, paiement_modifie, paiement_supprime or tous")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := caisse.ActivityFilter{CaissierID: *cashier, Action: enums.ActivityAction(*action)}
	if *date != "" {
		parsed, err := utils.ParseReportDate(*date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		filter.Date = parsed
	}

	activities, err := a.service.CashierActivities(ctx, filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCAISSIER\tACTION\tDESCRIPTION\tMONTANT")
	for _, act := range activities {
		montant := ""
		if act.Montant != nil {
			montant = utils.FormatXOF(*act.Montant)
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n", act.DateAction, act.CaissierPrenom, act.CaissierNom, act.Action, act.Description, montant)
	}
	return w.Flush()
}

func (a *app) stats(ctx context.Context, _ []string) error {
	stats, err := a.service.CashierStats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCAISSIER\tPAIEMENTS\tMONTANT\tDERNIÈRE ACTIVITÉ\tSTATUT")
	for _, st := range stats {
		fmt.Fprintf(w, "%d\t%s %s\t%d\t%s\t%s\t%s\n",
			st.CaissierID, st.Prenom, st.Nom, st.TotalPaiements, utils.FormatXOF(st.MontantTotal), st.DerniereActivite, st.Status)
	}
	return w.Flush()
}

func (a *app) deletionRequests(ctx context.Context, _ []string) error {
	requests, err := a.service.DeletionRequests(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAIEMENT\tDEMANDEUR\tJUSTIFICATION\tSTATUT")
	for _, req := range requests {
		fmt.Fprintf(w, "%d\t%d\t%s %s (%s)\t%s\t%s\n",
			req.ID, req.PaiementID, req.DemandeurPrenom, req.DemandeurNom, req.DemandeurRole, req.Justification, req.Statut)
	}
	return w.Flush()
}

func (a *app) review(ctx context.Context, args []string) error {
	fs := a.flags("review")
	id := fs.Uint64("id", 0, "deletion request id")
	decision := fs.String("decision", "", "approuve or refuse")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("-id is required")
	}

	status := enums.DeletionRequestStatus(strings.ToLower(*decision))
	if err := a.service.ReviewDeletionRequest(ctx, *id, status); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Demande %s: %s\n", strconv.FormatUint(*id, 10), status)
	return nil
}

// describe turns an error into the line shown to the operator.
func describe(err error) string {
	var validationErr *apierror.ValidationError
	var backendErr *apierror.BackendError
	switch {
	case errors.Is(err, apierror.ErrAuthorizationExpired):
		return reloginMessage
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, apierror.ErrAuthentication):
		return err.Error()
	case errors.Is(err, apierror.ErrNetwork):
		return "backend unreachable: " + err.Error()
	case errors.As(err, &backendErr) && backendErr.Message != "":
		return backendErr.Message
	default:
		return err.Error()
	}
}
