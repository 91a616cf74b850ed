package httpapi

import (
	"encoding/json"
	"net/http"

	goAccount "github.com/MrEthical07/goAccount"
)

type messageResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, messageResponse{Message: message, Code: code})
}

func writeResult(w http.ResponseWriter, res goAccount.Result) {
	if res.OK() && res.AccessToken != "" {
		writeJSON(w, http.StatusOK, loginResponse{AccessToken: res.AccessToken})
		return
	}
	writeMessage(w, res.Code, res.Message)
}
