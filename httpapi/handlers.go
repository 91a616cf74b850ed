package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/middleware"
)

func (a *api) userDetail(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Missing Authorization Header")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.bind(w, r, &req) {
		return
	}
	res, err := a.engine.Login(r.Context(), req.Username, req.Password)
	a.respond(w, r, res, err)
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.bind(w, r, &req) {
		return
	}
	res, err := a.engine.Register(r.Context(), goAccount.RegisterInput{
		Email:     req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	a.respond(w, r, res, err)
}

func (a *api) confirm(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.Confirm(r.Context(), mux.Vars(r)["token"])
	a.respond(w, r, res, err)
}

func (a *api) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !a.bind(w, r, &req) {
		return
	}
	res, err := a.engine.RequestPasswordReset(r.Context(), req.Username)
	a.respond(w, r, res, err)
}

func (a *api) verifyResetToken(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.VerifyResetToken(r.Context(), mux.Vars(r)["token"])
	a.respond(w, r, res, err)
}

func (a *api) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !a.bind(w, r, &req) {
		return
	}
	res, err := a.engine.CompletePasswordReset(r.Context(), mux.Vars(r)["token"], req.Password)
	a.respond(w, r, res, err)
}

func (a *api) bind(w http.ResponseWriter, r *http.Request, dst interface{ Validate() error }) bool {
	err := decode(w, r, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, errUnsupportedMedia) {
		writeMessage(w, http.StatusUnsupportedMediaType, "Unsupported content type.")
		return false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		return false
	}
	writeMessage(w, http.StatusBadRequest, err.Error())
	return false
}

func (a *api) respond(w http.ResponseWriter, r *http.Request, res goAccount.Result, err error) {
	if err != nil {
		a.logger.Error(r.Context(), "flow failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeResult(w, res)
}
