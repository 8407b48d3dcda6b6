package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yaseenp24/workout-buddy/internal/auth"
	"github.com/yaseenp24/workout-buddy/internal/middleware"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/metrics"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
	"github.com/yaseenp24/workout-buddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type usersRepo interface {
	Create(ctx context.Context, user User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	CompleteOnboarding(
		ctx context.Context,
		userID int,
		goals []string,
		schedule string,
		equipment []string,
		experienceLevel string,
	) (*User, error)
}

type tokenIssuer interface {
	GenerateToken(userID int) (string, error)
}

type tokenRevoker interface {
	Deny(ctx context.Context, token string) error
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OnboardingRequest struct {
	Goals           []string `json:"goals"`
	Schedule        string   `json:"schedule"`
	Equipment       []string `json:"equipment"`
	ExperienceLevel string   `json:"experience_level"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  View   `json:"user"`
}

type ProfileResponse struct {
	User View `json:"user"`
}

type Handler struct {
	repo           usersRepo
	tokens         tokenIssuer
	revoker        tokenRevoker
	metricsManager *metrics.Manager
}

func NewHandler(repo usersRepo, tokens tokenIssuer, revoker tokenRevoker, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		tokens:         tokens,
		revoker:        revoker,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	r *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	rateLimit := middleware.RateLimit(rateLimiter, "login", allowedPerMin, handler.metricsManager)
	r.Handle("/register", rateLimit(http.HandlerFunc(handler.HandleRegister))).
		Methods("POST", "OPTIONS").Name("register")
	r.Handle("/login", rateLimit(http.HandlerFunc(handler.HandleLogin))).
		Methods("POST", "OPTIONS").Name("login")

	r.HandleFunc("/logout", handler.HandleLogout).
		Methods("POST", "OPTIONS").Name("logout")
	r.HandleFunc("/user/profile", handler.HandleGetProfile).
		Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/user/onboarding", handler.HandleCompleteOnboarding).
		Methods("PUT", "OPTIONS").Name("complete-onboarding")
}

// HandleLogout revokes the presented token. The auth middleware has already
// validated it, revocation just keeps it out until its natural expiry.
func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token := auth.BearerToken(r)
	if token == "" {
		pkg.WriteJSONError(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	if err := handler.revoker.Deny(ctx, token); err != nil {
		log.Errorf("logout user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to log out", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d logged out", userID)
	pkg.WriteJSONResponseOK(w, `{"message":"logged out"}`)
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		pkg.WriteJSONError(w, "email, password, and name are required", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		pkg.WriteJSONError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Create(ctx, User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			pkg.WriteJSONError(w, "email already registered", http.StatusBadRequest)
			return
		}
		log.Errorf("register, create user [%s]: %s", req.Email, err)
		pkg.WriteJSONError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	handler.writeAuthResponse(w, user, http.StatusCreated)
	handler.metricsManager.CounterUsersRegistered.Inc()
	log.Debugf("new user registered: %d", user.ID)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		pkg.WriteJSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Errorf("login, get user [%s]: %s", req.Email, err)
			pkg.WriteJSONError(w, "failed to log in", http.StatusInternalServerError)
			return
		}
		// same response as a wrong password, no account enumeration
		pkg.WriteJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !pkg.CheckPasswordHash(req.Password, user.PasswordHash) {
		pkg.WriteJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	handler.writeAuthResponse(w, user, http.StatusOK)
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.getProfile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	user, err := handler.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get profile, get user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	handler.writeProfileResponse(w, user)
}

func (handler *Handler) HandleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.completeOnboarding")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	var req OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("onboarding, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	if req.Goals == nil {
		req.Goals = []string{}
	}
	if req.Equipment == nil {
		req.Equipment = []string{}
	}

	user, err := handler.repo.CompleteOnboarding(
		ctx, userID, req.Goals, req.Schedule, req.Equipment, req.ExperienceLevel,
	)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("complete onboarding for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to complete onboarding", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d completed onboarding", userID)
	handler.writeProfileResponse(w, user)
}

func (handler *Handler) writeAuthResponse(w http.ResponseWriter, user *User, statusCode int) {
	token, err := handler.tokens.GenerateToken(user.ID)
	if err != nil {
		log.Errorf("generate token for user %d: %s", user.ID, err)
		pkg.WriteJSONError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(AuthResponse{
		Token: token,
		User:  user.View(),
	})
	if err != nil {
		log.Errorf("marshal auth response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}

func (handler *Handler) writeProfileResponse(w http.ResponseWriter, user *User) {
	respJson, err := json.Marshal(ProfileResponse{User: user.View()})
	if err != nil {
		log.Errorf("marshal profile response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
