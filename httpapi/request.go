package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

const maxBodyBytes = 64 << 10

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(0, 320)),
		validation.Field(&r.Password, validation.Length(0, 4096)),
	)
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(0, 320)),
		validation.Field(&r.Password, validation.Length(0, 4096)),
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
	)
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

func (r forgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(0, 320)),
	)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Length(0, 4096)),
	)
}

var errUnsupportedMedia = errors.New("unsupported content type")

// decode fills dst from a JSON or form body and validates it. Missing
// fields are left empty; the engine decides what is required.
func decode(w http.ResponseWriter, r *http.Request, dst validation.Validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if mediaType, _, err = mime.ParseMediaType(ct); err != nil {
			return errUnsupportedMedia
		}
	}

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode json: %w", err)
		}
	case "", "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return fmt.Errorf("parse form: %w", err)
		}
		fillFromForm(r, dst)
	default:
		return errUnsupportedMedia
	}

	return dst.Validate()
}

func fillFromForm(r *http.Request, dst any) {
	switch v := dst.(type) {
	case *loginRequest:
		v.Username = r.FormValue("username")
		v.Password = r.FormValue("password")
	case *registerRequest:
		v.Username = r.FormValue("username")
		v.Password = r.FormValue("password")
		v.FirstName = r.FormValue("first_name")
		v.LastName = r.FormValue("last_name")
	case *forgotPasswordRequest:
		v.Username = r.FormValue("username")
	case *resetPasswordRequest:
		v.Password = r.FormValue("password")
	}
}
