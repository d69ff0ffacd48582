package sessions

import (
	"net/http"
	"time"

	"payflow/account"
	"payflow/bizerror"
	"payflow/misc"
	"payflow/persistence"
	"payflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

var PathSessions = "/v1/sessions"

// loginLimiter slows down password guessing, 5 attempts per second with small bursts
var loginLimiter = rate.NewLimiter(5, 10)

func RegisterSessionsRestAPI(r *gin.Engine) {
	g := r.Group(PathSessions)
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
	g.GET("", handleQuerySession)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	if !loginLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, &misc.ErrorBody{Code: "common.too_many_requests", Message: "too many login attempts"})
		return
	}

	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	identity := session.Identity{}
	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	if err := db.Model(&account.User{}).
		Where(&account.User{Name: login.Name, Secret: account.HashSha256(login.Password)}).
		Scan(&identity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		panic(err)
	}

	token := uuid.New().String()
	perms := account.LoadPermsFunc(identity.ID)
	securityContext := session.Session{Token: token, Identity: identity, Perms: perms, SigningTime: time.Now()}
	session.TokenCache.Set(token, &securityContext, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &securityContext)
}

func handleQuerySession(c *gin.Context) {
	token, err := c.Cookie(session.KeySecToken)
	if err != nil {
		panic(bizerror.ErrUnauthenticated)
	}
	value, found := session.TokenCache.Get(token)
	if !found {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, value)
}
