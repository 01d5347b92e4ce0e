package api

import (
	"database/sql"
	"net/http"

	"github.com/leftoverhq/leftover/internal/blob"
	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/metrics"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/sweeper"
)

// Deps are the services the API handlers share.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Clock     clock.Clock
	Images    blob.Store
	Metrics   *metrics.Metrics
	Sweeper   *sweeper.Sweeper
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Sweeper == nil {
		d.Sweeper = sweeper.New(d.DB, d.Clock, d.Metrics)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret}
	usersHandler := &UsersHandler{DB: d.DB, Clock: d.Clock}
	donationsHandler := &DonationsHandler{DB: d.DB, Clock: d.Clock, Images: d.Images, Metrics: d.Metrics}
	claimsHandler := &ClaimsHandler{DB: d.DB, Clock: d.Clock, Metrics: d.Metrics}
	orgsHandler := &OrgsHandler{DB: d.DB, Clock: d.Clock}
	adminHandler := &AdminHandler{DB: d.DB, Sweeper: d.Sweeper}
	imagesHandler := &ImagesHandler{Images: d.Images}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)
	requireOperator := RequireRole(model.OperatorRole)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	operator := func(h http.HandlerFunc) http.Handler { return authMW(requireOperator(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/stats", adminHandler.Stats)
	mux.HandleFunc("GET /api/donors/{id}", orgsHandler.GetDonor)
	if d.Images != nil && d.Images.Driver() == blob.DriverSQLite {
		mux.HandleFunc("GET /api/images/{key}", imagesHandler.Get)
	}

	// Sessions.
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", operator(authHandler.ChangePassword))

	// Users and organizations.
	mux.Handle("POST /api/users/me", authed(usersHandler.EnsureMe))
	mux.Handle("POST /api/donors", authed(orgsHandler.CreateDonor))
	mux.Handle("PUT /api/donors/{id}", authed(orgsHandler.UpdateDonor))
	mux.Handle("POST /api/donors/{id}/members", authed(orgsHandler.AddDonorMember))
	mux.Handle("POST /api/receivers/individual", authed(orgsHandler.RegisterIndividual))
	mux.Handle("POST /api/receivers/charity", authed(orgsHandler.RegisterCharity))
	mux.Handle("PUT /api/charities/{id}", authed(orgsHandler.UpdateCharity))

	// Donations and claims.
	mux.Handle("POST /api/donations", authed(donationsHandler.Create))
	mux.Handle("GET /api/donations", authed(donationsHandler.ListAvailable))
	mux.Handle("GET /api/donations/mine", authed(donationsHandler.ListMine))
	mux.Handle("POST /api/donations/{id}/images", authed(donationsHandler.UploadImage))
	mux.Handle("POST /api/donations/{id}/claim", authed(donationsHandler.Claim))
	mux.Handle("POST /api/claims/{id}/pickup", authed(claimsHandler.Pickup))
	mux.Handle("GET /api/claims/mine", authed(claimsHandler.ListMine))

	// Operator tools.
	mux.Handle("POST /api/admin/sweep", operator(adminHandler.Sweep))
	mux.Handle("PUT /api/admin/donors/{id}/verified", operator(adminHandler.SetDonorVerified))

	return mux
}
