package admin

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailcore/storefront/internal/httpx"
)

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// EnsureAccount creates the bootstrap admin login when the username is free.
// An existing account keeps its password.
func EnsureAccount(ctx context.Context, repo Repository, username, password string) error {
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	a := &Account{ID: uuid.NewString(), Username: username, PasswordHash: hash}
	if err := repo.Create(ctx, a); err != nil {
		// lost a race against another instance bootstrapping the same login
		if errors.Is(err, ErrAlreadyExist) {
			return nil
		}
		return err
	}
	log.Printf("[admin] bootstrap account %q created", username)
	return nil
}

// BasicAuth guards the admin surface with HTTP basic credentials checked
// against stored accounts.
func BasicAuth(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}
		a, err := repo.GetByUsername(c.Request.Context(), username)
		if err != nil || !CheckPassword(a.PasswordHash, password) {
			unauthorized(c)
			return
		}
		c.Set("admin", a.Username)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="storefront admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, httpx.HTTPError{Error: "unauthorized"})
}
