package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ruralpay/invoices/internal/services"
)

const maxFormBytes = 1_048_576

// messageStatus maps action messages that are not field errors to the HTTP
// status they are answered with. Unlisted messages answer 200.
var messageStatus = map[string]int{
	services.MsgCreateFailed:       http.StatusInternalServerError,
	services.MsgUpdateFailed:       http.StatusInternalServerError,
	services.MsgDeleteFailed:       http.StatusInternalServerError,
	services.MsgInvalidCredentials: http.StatusUnauthorized,
	services.MsgSomethingWentWrong: http.StatusInternalServerError,
}

func stateStatus(state services.ActionState) int {
	if len(state.Errors) > 0 {
		return http.StatusUnprocessableEntity
	}
	if status, ok := messageStatus[state.Message]; ok {
		return status
	}
	return http.StatusOK
}

// writeResult answers a form submission. Redirects use 303 so the browser
// follows with a GET.
func writeResult(w http.ResponseWriter, r *http.Request, result services.Result) {
	switch result.Kind {
	case services.ResultRedirect:
		http.Redirect(w, r, result.Location, http.StatusSeeOther)
	case services.ResultFatal:
		log.Printf("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, result.Err)
		services.SendErrorResponse(w, "Internal Server Error", http.StatusInternalServerError, nil)
	default:
		services.SendJSON(w, stateStatus(result.State), result.State)
	}
}

// parseForm reads urlencoded or multipart form bodies into r.PostForm.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	err := r.ParseMultipartForm(maxFormBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}
