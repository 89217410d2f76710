package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/dto/request"
	"storefront/internal/usecase"
	"storefront/pkg/utils"

	"go.uber.org/zap"
)

type PasswordResetHandler struct {
	service usecase.PasswordResetService
	log     *zap.Logger
}

func NewPasswordResetHandler(service usecase.PasswordResetService, log *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		service: service,
		log:     log,
	}
}

// Forgot handles POST /api/password/forgot
func (h *PasswordResetHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		respondInvalid(w, validationErrors)
		return
	}

	resp, err := h.service.RequestCode(r.Context(), req.Email)
	if err != nil {
		h.handleServiceError(w, err, "request reset code")
		return
	}

	utils.ResponseSuccess(w, "Verification code sent", resp)
}

// Reset handles POST /api/password/reset
func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		respondInvalid(w, validationErrors)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		h.handleServiceError(w, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password has been reset", nil)
}

func respondInvalid(w http.ResponseWriter, fields map[string]string) {
	utils.ResponseJSON(w, http.StatusBadRequest, utils.Response{
		Message:   "Validation failed",
		ErrorType: usecase.ErrInvalidFormat.Error(),
		Errors:    fields,
	})
}

type errorMapping struct {
	err     error
	status  int
	message string
}

var resetErrorMappings = []errorMapping{
	{usecase.ErrInvalidFormat, http.StatusBadRequest, "Email or code is malformed"},
	{usecase.ErrWeakPassword, http.StatusBadRequest, "Password is too short"},
	{usecase.ErrNotFound, http.StatusNotFound, "No account found for this email"},
	{usecase.ErrNoPendingRequest, http.StatusBadRequest, "No reset was requested for this account"},
	{usecase.ErrAlreadyUsed, http.StatusBadRequest, "This code has already been used"},
	{usecase.ErrExpired, http.StatusBadRequest, "This code has expired, request a new one"},
	{usecase.ErrIncorrectCode, http.StatusBadRequest, "Incorrect verification code"},
	{usecase.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many incorrect attempts, request a new code"},
	{usecase.ErrTransportFailure, http.StatusBadGateway, "Could not deliver the verification code, try again"},
	{usecase.ErrStorageFailure, http.StatusServiceUnavailable, "Service temporarily unavailable, try again"},
}

// handleServiceError maps reset outcomes to a status and error_type.
func (h *PasswordResetHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	for _, m := range resetErrorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.status >= http.StatusInternalServerError {
			h.log.Error("Failed to "+operation, zap.Error(err))
		} else {
			h.log.Warn(operation+" rejected", zap.String("error_type", m.err.Error()))
		}
		utils.ResponseError(w, m.status, m.err.Error(), m.message)
		return
	}

	h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	utils.ResponseInternalError(w, "Internal server error")
}
