package testinfra

import (
	"context"
	"net/http"
	"net/http/httptest"

	"payflow/authority"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds an authenticated session for tests.
func BuildSession(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String()},
		Perms:    authority.Permissions(perms),
		Context:  context.Background(),
	}
}

// ExecuteRequest drives one request through the router and returns the
// response status, body and recorder.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
