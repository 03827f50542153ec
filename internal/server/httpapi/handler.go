// Package httpapi serves the REST surface of the authentication service
// with chi. Every response is an api.Response envelope.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	creds    api.Credentials
	otp      api.OTP
	tenants  api.Tenants
	verifier *auth.Verifier
	logger   logging.Logger
}

func NewHandler(l logging.Logger, creds api.Credentials, otp api.OTP, tenants api.Tenants, v *auth.Verifier) *Handler {
	return &Handler{
		creds:    creds,
		otp:      otp,
		tenants:  tenants,
		verifier: v,
		logger:   l.With("module", "http_api"),
	}
}

// Routes returns the router with middleware and every endpoint mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Post("/set-password", h.SetPassword)

		r.Post("/mobile/verify/request", h.MobileVerifyRequest)
		r.Post("/mobile/verify/confirm", h.MobileVerifyConfirm)

		r.Post("/password/otp/request", h.PasswordOtpRequest)
		r.Post("/password/otp/verify", h.PasswordOtpVerify)

		r.Post("/super-admin/otp/request", h.SuperAdminOtpRequest)
		r.Post("/super-admin/otp/verify", h.SuperAdminOtpVerify)
	})

	r.Route("/platform", func(r chi.Router) {
		r.Use(h.bearerAuth)
		r.Post("/tenants", h.CreateTenant)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Auth Service Running"))
}

func writeJSON(w http.ResponseWriter, status int, body *api.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) ok(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, api.OK(message, data))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := common.CodeOf(err)
	if code == common.CodeServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code.HTTPStatus(), api.Fail(err))
}

// decode reads a JSON body into dst. Malformed bodies are a validation
// failure, like missing fields.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debug(r.Context(), "bad request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, api.FailCode(common.CodeValidationFailed, "Request body must be valid JSON"))
		return false
	}
	return true
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.creds.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageLoginSuccess, api.TokenData{Token: token})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.creds.ForgotPassword(r.Context(), req.Email); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageResetEmailSent, nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.PasswordTokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.creds.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessagePasswordResetSuccess, nil)
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.PasswordTokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.creds.SetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessagePasswordSetSuccess, nil)
}

func (h *Handler) MobileVerifyRequest(w http.ResponseWriter, r *http.Request) {
	var req api.MobileRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.otp.MobileVerifyRequest(r.Context(), req.Mobile); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageOTPSent, nil)
}

func (h *Handler) MobileVerifyConfirm(w http.ResponseWriter, r *http.Request) {
	var req api.MobileOTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.otp.MobileVerifyConfirm(r.Context(), req.Mobile, req.OTP); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageMobileVerified, nil)
}

func (h *Handler) PasswordOtpRequest(w http.ResponseWriter, r *http.Request) {
	var req api.MobileRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.otp.PasswordOtpRequest(r.Context(), req.Mobile); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageOTPSent, nil)
}

func (h *Handler) PasswordOtpVerify(w http.ResponseWriter, r *http.Request) {
	var req api.PasswordOTPVerifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.otp.PasswordOtpVerify(r.Context(), req.Mobile, req.OTP, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessagePasswordResetSuccess, nil)
}

func (h *Handler) SuperAdminOtpRequest(w http.ResponseWriter, r *http.Request) {
	var req api.MobileRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.otp.SuperAdminOtpRequest(r.Context(), req.Mobile); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageOTPSent, nil)
}

func (h *Handler) SuperAdminOtpVerify(w http.ResponseWriter, r *http.Request) {
	var req api.MobileOTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.otp.SuperAdminOtpVerify(r.Context(), req.Mobile, req.OTP)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageLoginSuccess, api.TokenData{Token: token})
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	// Authorization runs before the body is looked at.
	caller, _ := auth.ClaimsFromContext(r.Context())
	if caller == nil || !caller.Roles.CanProvisionTenants() {
		h.fail(w, r, common.ErrForbidden)
		return
	}

	var req api.CreateTenantRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.tenants.CreateTenant(r.Context(), caller, req.Input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, api.MessageTenantCreated, api.TenantData{TenantID: id})
}
