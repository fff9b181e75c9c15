package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/urcet/yourfest-api/internal/api/handler/v1/response"
	"github.com/urcet/yourfest-api/internal/pkg/jwthelper"
)

const (
	ContextKeySubject = "subject"
	ContextKeyRole    = "role"

	RoleAdmin = "admin"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNotAdmin     = errors.New("admin role required")
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT accepts the token from the Authorization header, or from the
// token query parameter for websocket clients that cannot set headers.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		if claims.Role != RoleAdmin {
			response.RenderErr(ctx, response.ErrPermissionDenied(errNotAdmin))
			return
		}

		ctx.Set(ContextKeySubject, claims.Subject)
		ctx.Set(ContextKeyRole, claims.Role)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ctx.Query("token")
}
