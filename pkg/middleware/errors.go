package middleware

import (
	"net/http"

	"github.com/tilestudio/site/pkg/httputil"
)

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: message},
	})
}
