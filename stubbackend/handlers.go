package stubbackend

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/interfaces/http/echo/middleware"
	"github.com/octabyte/caisse-gommon/models"
	"github.com/octabyte/caisse-gommon/utils"
)

const (
	messageInvalidCredentials = "Identifiants invalides"
	messageInvalidData        = "The given data was invalid."
	messageAllFieldsRequired  = "Tous les champs sont obligatoires"
	messageAmountPositive     = "Le montant doit être supérieur à 0"
	messageNotFound           = "Ressource introuvable"
)

func (b *Backend) routes() {
	api := b.echo.Group("/api", middleware.ExtractTraceContext(), b.record, middleware.SetTokenInContext())

	api.POST("/auth/login", b.login)
	api.POST("/auth/register", b.register)

	session := middleware.RequireSession(b.resolve)
	admins := middleware.RequireRole(enums.RoleAdmin, enums.RoleSuperAdmin)
	cashiers := middleware.RequireRole(enums.RoleCashier, enums.RoleAdmin)
	superAdmin := middleware.RequireRole(enums.RoleSuperAdmin)

	api.POST("/auth/logout", b.logout, session)
	api.GET("/user", b.currentUser, session)
	api.GET("/profile", b.currentUser, session)

	api.GET("/admin/clients", b.listClients, session, admins)
	api.GET("/admin/clients/:id", b.clientDetails, session, admins)
	api.DELETE("/clients/:id", b.deleteClient, session, admins)
	api.GET("/admin/daily-report", b.dailyReport, session, admins)
	api.GET("/admin/monthly-report", b.monthlyReport, session, admins)

	api.POST("/paiements", b.createPayment, session, cashiers)
	api.GET("/paiements/mes-paiements", b.myPayments, session, cashiers)

	api.GET("/superadmin/activites", b.activitiesList, session, superAdmin)
	api.GET("/superadmin/statistiques", b.cashierStats, session, superAdmin)
	api.GET("/superadmin/demandes-suppression", b.deletionRequestsList, session, superAdmin)
	api.POST("/superadmin/demandes-suppression/:id/traiter", b.reviewDeletionRequest, session, superAdmin)
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

func invalid(c echo.Context, msg string, fields map[string][]string) error {
	body := echo.Map{"message": msg}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	return c.JSON(http.StatusUnprocessableEntity, body)
}

func (b *Backend) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalid(c, messageInvalidData, nil)
	}
	if req.Email == "" || req.MotDePasse == "" {
		return invalid(c, messageInvalidData, map[string][]string{"email": {"required"}, "mot_de_passe": {"required"}})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, acc := range b.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) && acc.password == req.MotDePasse {
			if acc.user.Actif != nil && !*acc.user.Actif {
				return message(c, http.StatusForbidden, "Compte désactivé")
			}
			token := b.issueTokenLocked(acc.user.ID)
			b.logActivityLocked(acc.user, enums.ActivityLogin, "Connexion", nil)
			return c.JSON(http.StatusOK, models.Session{User: acc.user, Token: token})
		}
	}

	return message(c, http.StatusUnauthorized, messageInvalidCredentials)
}

func (b *Backend) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalid(c, messageInvalidData, nil)
	}

	fields := make(map[string][]string)
	for name, value := range map[string]string{"nom": req.Nom, "prenom": req.Prenom, "email": req.Email, "mot_de_passe": req.MotDePasse} {
		if strings.TrimSpace(value) == "" {
			fields[name] = []string{"The " + name + " field is required."}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, acc := range b.accounts {
		if req.Email != "" && strings.EqualFold(acc.user.Email, req.Email) {
			fields["email"] = []string{"The email has already been taken."}
		}
	}
	if len(fields) > 0 {
		return invalid(c, messageInvalidData, fields)
	}

	b.nextID++
	solde := 0.0
	user := models.User{
		ID:           b.nextID,
		Nom:          req.Nom,
		Prenom:       req.Prenom,
		Email:        req.Email,
		Role:         enums.RoleClient,
		Solde:        &solde,
		DateCreation: b.now().UTC().Format(time.RFC3339),
	}
	b.accounts[user.ID] = &account{user: user, password: req.MotDePasse}
	token := b.issueTokenLocked(user.ID)

	return c.JSON(http.StatusCreated, models.Session{User: user, Token: token})
}

func (b *Backend) logout(c echo.Context) error {
	token, _ := c.Get(middleware.TokenKey).(string)
	user := middleware.SessionUser(c)

	b.mu.Lock()
	delete(b.tokens, token)
	b.logActivityLocked(user, enums.ActivityLogout, "Déconnexion", nil)
	b.mu.Unlock()

	return message(c, http.StatusOK, "Déconnexion réussie")
}

func (b *Backend) currentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.SessionUser(c))
}

func (b *Backend) listClients(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := make([]models.Client, 0, len(b.clients))
	for _, client := range b.clients {
		clients = append(clients, client)
	}
	sortClients(clients)
	return c.JSON(http.StatusOK, clients)
}

func (b *Backend) clientDetails(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return message(c, http.StatusNotFound, messageNotFound)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	client, ok := b.clients[id]
	if !ok {
		return message(c, http.StatusNotFound, messageNotFound)
	}
	return c.JSON(http.StatusOK, client)
}

func (b *Backend) deleteClient(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return message(c, http.StatusNotFound, messageNotFound)
	}

	var req models.DeleteClientRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Justification) == "" {
		return invalid(c, "La justification est obligatoire", map[string][]string{"justification": {"required"}})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[id]; !ok {
		return message(c, http.StatusNotFound, messageNotFound)
	}
	delete(b.clients, id)
	return message(c, http.StatusOK, "Client supprimé")
}

func (b *Backend) dailyReport(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = utils.ReportDate(b.now())
	}
	mode := enums.PaymentMode(c.QueryParam("mode"))

	b.mu.Lock()
	defer b.mu.Unlock()

	report := models.DailyReport{Date: date, TransactionsParMode: &models.ModeTotals{}}
	for _, p := range b.payments {
		if p.Date != date {
			continue
		}
		addToTotals(report.TransactionsParMode, p.Payment)
		if mode != "" && p.ModePaiement != mode {
			continue
		}
		report.TotalCredits += p.Montant
		report.TotalTransactions++
	}
	for _, client := range b.clients {
		report.SoldeTotal += client.Solde
	}

	return c.JSON(http.StatusOK, report)
}

func (b *Backend) monthlyReport(c echo.Context) error {
	month, year := utils.MonthYear(b.now())
	if v, err := strconv.Atoi(c.QueryParam("month")); err == nil {
		month = v
	}
	if v, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		year = v
	}
	mode := enums.PaymentMode(c.QueryParam("mode"))

	b.mu.Lock()
	defer b.mu.Unlock()

	report := models.MonthlyReport{Month: strconv.Itoa(month), Year: year, TransactionsParMode: &models.ModeTotals{}}
	active := make(map[string]struct{})
	for _, p := range b.payments {
		day, err := utils.ParseReportDate(p.Date)
		if err != nil || int(day.Month()) != month || day.Year() != year {
			continue
		}
		addToTotals(report.TransactionsParMode, p.Payment)
		if mode != "" && p.ModePaiement != mode {
			continue
		}
		report.TotalCredits += p.Montant
		report.TotalTransactions++
		active[p.NumeroPolice] = struct{}{}
	}
	report.ClientsActifs = len(active)

	return c.JSON(http.StatusOK, report)
}

func (b *Backend) createPayment(c echo.Context) error {
	var req models.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return invalid(c, messageAllFieldsRequired, nil)
	}
	if req.Montant < 0 {
		return invalid(c, messageAmountPositive, map[string][]string{"montant": {"gt"}})
	}
	if err := utils.ValidatePayload(req); err != nil {
		return invalid(c, messageAllFieldsRequired, nil)
	}
	if req.ModePaiement.RequiresPieceNumber() && strings.TrimSpace(req.NumeroPiece) == "" {
		return invalid(c, "Le numéro de pièce est obligatoire", map[string][]string{"numero_piece": {"required"}})
	}

	user := middleware.SessionUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()

	stored := b.addPaymentLocked(user.ID, models.Payment{
		Nom:            req.Nom,
		Prenom:         req.Prenom,
		Montant:        req.Montant,
		MontantLettres: req.MontantLettres,
		NumeroPolice:   req.NumeroPolice,
		ModePaiement:   req.ModePaiement,
		NumeroPiece:    req.NumeroPiece,
	})
	b.logActivityLocked(user, enums.ActivityPaymentCreated, "Paiement enregistré", &stored.Payment)

	return c.JSON(http.StatusCreated, stored.Payment)
}

func (b *Backend) myPayments(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}
	user := middleware.SessionUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()

	var mine []models.Payment
	for _, p := range sortedPayments(b.payments) {
		if p.cashierID == user.ID {
			mine = append(mine, p.Payment)
		}
	}

	result := models.PaymentPage{
		Data:        []models.Payment{},
		CurrentPage: page,
		PerPage:     limit,
		Total:       len(mine),
		LastPage:    (len(mine) + limit - 1) / limit,
	}
	if result.LastPage == 0 {
		result.LastPage = 1
	}
	if start := (page - 1) * limit; start < len(mine) {
		end := start + limit
		if end > len(mine) {
			end = len(mine)
		}
		result.Data = mine[start:end]
	}

	return c.JSON(http.StatusOK, result)
}

func (b *Backend) activitiesList(c echo.Context) error {
	date := c.QueryParam("date")
	cashierID, _ := strconv.ParseUint(c.QueryParam("caissier_id"), 10, 64)
	action := enums.ActivityAction(c.QueryParam("action"))

	b.mu.Lock()
	defer b.mu.Unlock()

	activities := make([]models.CashierActivity, 0, len(b.activities))
	for _, activity := range b.activities {
		if date != "" && !strings.HasPrefix(activity.DateAction, date) {
			continue
		}
		if cashierID != 0 && activity.CaissierID != cashierID {
			continue
		}
		if action != "" && activity.Action != action {
			continue
		}
		activities = append(activities, activity)
	}

	return c.JSON(http.StatusOK, activities)
}

func (b *Backend) cashierStats(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := make([]models.CashierStats, 0)
	for _, acc := range b.accounts {
		if acc.user.Role != enums.RoleCashier {
			continue
		}

		stat := models.CashierStats{CaissierID: acc.user.ID, Nom: acc.user.Nom, Prenom: acc.user.Prenom, Status: "inactif"}
		for _, p := range b.payments {
			if p.cashierID == acc.user.ID {
				stat.TotalPaiements++
				stat.MontantTotal += p.Montant
			}
		}
		for _, activity := range b.activities {
			if activity.CaissierID == acc.user.ID && activity.DateAction > stat.DerniereActivite {
				stat.DerniereActivite = activity.DateAction
			}
		}
		for _, id := range b.tokens {
			if id == acc.user.ID {
				stat.Status = "actif"
			}
		}
		stats = append(stats, stat)
	}
	sortStats(stats)

	return c.JSON(http.StatusOK, stats)
}

func (b *Backend) deletionRequestsList(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	requests := make([]models.DeletionRequest, 0, len(b.deletionRequests))
	for _, req := range b.deletionRequests {
		requests = append(requests, *req)
	}
	return c.JSON(http.StatusOK, requests)
}

func (b *Backend) reviewDeletionRequest(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return message(c, http.StatusNotFound, messageNotFound)
	}

	var req models.ReviewDeletionRequest
	if err := c.Bind(&req); err != nil || utils.ValidatePayload(req) != nil {
		return invalid(c, messageInvalidData, map[string][]string{"statut": {"oneof"}})
	}
	reviewer := middleware.SessionUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, pending := range b.deletionRequests {
		if pending.ID != id {
			continue
		}
		if pending.Statut != enums.DeletionRequestPending {
			return invalid(c, "Demande déjà traitée", nil)
		}

		pending.Statut = req.Statut
		pending.DateTraitement = b.now().UTC().Format(time.RFC3339)
		reviewerID := reviewer.ID
		pending.TraitePar = &reviewerID

		if req.Statut == enums.DeletionRequestApproved {
			b.removePaymentLocked(pending.PaiementID)
		}
		return c.JSON(http.StatusOK, *pending)
	}

	return message(c, http.StatusNotFound, messageNotFound)
}

func (b *Backend) removePaymentLocked(id uint64) {
	for i, p := range b.payments {
		if p.ID == id {
			b.payments = append(b.payments[:i], b.payments[i+1:]...)
			if cashier, ok := b.accounts[p.cashierID]; ok {
				b.logActivityLocked(cashier.user, enums.ActivityPaymentDeleted, "Paiement supprimé", &p.Payment)
			}
			return
		}
	}
}

func addToTotals(totals *models.ModeTotals, p models.Payment) {
	switch p.ModePaiement {
	case enums.PaymentModeCash:
		totals.Espece += p.Montant
	case enums.PaymentModeCard:
		totals.TPE += p.Montant
	case enums.PaymentModeCheque:
		totals.Cheque += p.Montant
	}
}
