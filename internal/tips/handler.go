package tips

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/yaseenp24/workout-buddy/internal/auth"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/metrics"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
	"github.com/yaseenp24/workout-buddy/internal/users"
	"github.com/yaseenp24/workout-buddy/pkg"
)

type profileGetter interface {
	GetByID(ctx context.Context, id int) (*users.User, error)
}

type TipsRequest struct {
	Profile *Profile `json:"profile"`
}

type TipsResponse struct {
	Tips []string `json:"tips"`
}

type Handler struct {
	engine         *Engine
	profiles       profileGetter
	metricsManager *metrics.Manager
}

func NewHandler(engine *Engine, profiles profileGetter, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		engine:         engine,
		profiles:       profiles,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/ai/profile-tips", handler.HandleProfileTips).Methods("POST", "OPTIONS").Name("profile-tips")
}

// HandleProfileTips works with or without authentication. An explicit profile
// in the payload wins; otherwise, with a valid token present, the caller's
// stored onboarding answers are used; otherwise the profile is empty.
func (handler *Handler) HandleProfileTips(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tips")
	defer span.End()

	var req TipsRequest
	if r.Body != nil {
		// a missing or malformed body just means an empty profile
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Tracef("profile tips, ignoring payload: %s", err)
		}
	}

	var profile Profile
	switch {
	case req.Profile != nil:
		profile = *req.Profile
	default:
		if userID, ok := auth.UserIDFromContext(ctx); ok {
			user, err := handler.profiles.GetByID(ctx, userID)
			if err != nil {
				log.Debugf("profile tips, user %d lookup: %s", userID, err)
			} else {
				profile = Profile{
					Goals:           user.Goals,
					Schedule:        user.Schedule,
					Equipment:       user.Equipment,
					ExperienceLevel: user.ExperienceLevel,
				}
			}
		}
	}

	result := handler.engine.ComputeTips(ctx, profile)
	if result.Source == SourceModel {
		handler.metricsManager.CounterTipsModelServed.Inc()
	} else {
		handler.metricsManager.CounterTipsFallbacks.Inc()
		log.Debugf("profile tips served from rule table (fallback reason: %q)", result.FallbackReason)
	}

	respBytes, err := json.Marshal(TipsResponse{Tips: result.Tips})
	if err != nil {
		log.Errorf("marshal tips: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}
