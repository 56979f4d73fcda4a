package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sdko-org/fipe-gateway/internal/auth"
	"github.com/sdko-org/fipe-gateway/internal/fipe"
	"github.com/sdko-org/fipe-gateway/internal/repository"
	"github.com/sdko-org/fipe-gateway/internal/storage"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type APIOptions struct {
	Lookups  *fipe.Service
	Listings *repository.ListingRepository
	History  *repository.SearchHistoryRepository
	// Photos may be nil when no bucket is configured.
	Photos       storage.Storage
	Auth         *auth.Verifier
	HistoryLimit int
}

type API struct {
	lookups      *fipe.Service
	listings     *repository.ListingRepository
	history      *repository.SearchHistoryRepository
	photos       storage.Storage
	auth         *auth.Verifier
	historyLimit int
	log          *logrus.Entry
}

func NewAPI(logger *logrus.Logger, opts APIOptions) *API {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 3
	}
	return &API{
		lookups:      opts.Lookups,
		listings:     opts.Listings,
		history:      opts.History,
		photos:       opts.Photos,
		auth:         opts.Auth,
		historyLimit: opts.HistoryLimit,
		log:          logger.WithField("component", "api"),
	}
}

// requireUser rejects requests without a valid bearer token and stores the
// user id in the request context.
func (a *API) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.auth.UserFromRequest(r)
		if err != nil {
			a.log.WithError(err).Debug("Rejected unauthenticated request")
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}
