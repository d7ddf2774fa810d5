package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajsanitation/orio-rewards/internal/api/handler/v1/response"
	"github.com/rajsanitation/orio-rewards/internal/pkg/jwthelper"
)

const ContextKeyUserID = "userID"

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey []byte) *Authenticator {
	return &Authenticator{
		signingKey: signingKey,
	}
}

// VerifyJWT authenticates the Bearer token and stores the user ID in the
// request context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		segments := strings.Split(header, " ")
		if len(segments) != 2 || segments[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrWrongCredentials(jwthelper.ErrInvalidToken))

			return
		}

		userID, err := jwthelper.ParseToken(a.signingKey, segments[1], ctx.Request.UserAgent())
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrWrongCredentials(jwthelper.ErrInvalidToken))

			return
		}

		ctx.Set(ContextKeyUserID, userID)
		ctx.Next()
	}
}
