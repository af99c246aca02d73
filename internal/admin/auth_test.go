package admin

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

//
// ---------- STUBS & FAKES ----------
//

// stubAccounts implements Repository in memory, keyed by username.
type stubAccounts struct {
	mu       sync.Mutex
	accounts map[string]*Account
	creates  int
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{accounts: make(map[string]*Account)}
}

func (s *stubAccounts) Create(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Username]; ok {
		return ErrAlreadyExist
	}
	cp := *a
	s.accounts[a.Username] = &cp
	s.creates++
	return nil
}

func (s *stubAccounts) GetByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubAccounts) UpdatePassword(ctx context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			a.PasswordHash = hash
			return nil
		}
	}
	return ErrNotFound
}

func (s *stubAccounts) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, a := range s.accounts {
		if a.ID == id {
			delete(s.accounts, name)
			return true, nil
		}
	}
	return false, nil
}

//
// ---------- TESTS ----------
//

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestEnsureAccount_CreatesOnce(t *testing.T) {
	t.Parallel()

	repo := newStubAccounts()
	ctx := context.Background()

	if err := EnsureAccount(ctx, repo, "admin", "changeme"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := EnsureAccount(ctx, repo, "admin", "otra-clave"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("creates=%d, esperaba 1", repo.creates)
	}

	// la contraseña original se conserva
	a, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !CheckPassword(a.PasswordHash, "changeme") {
		t.Fatal("bootstrap password was overwritten")
	}
}

func newAuthRouter(repo Repository) *gin.Engine {
	r := gin.New()
	r.GET("/admin/ping", BasicAuth(repo), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestBasicAuth_AllowsValidCredentials(t *testing.T) {
	t.Parallel()

	repo := newStubAccounts()
	if err := EnsureAccount(context.Background(), repo, "admin", "changeme"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	r := newAuthRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.SetBasicAuth("admin", "changeme")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s (esperaba 200)", w.Code, w.Body.String())
	}
}

func TestBasicAuth_RejectsWrongPassword(t *testing.T) {
	t.Parallel()

	repo := newStubAccounts()
	if err := EnsureAccount(context.Background(), repo, "admin", "changeme"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	r := newAuthRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.SetBasicAuth("admin", "wrong")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d (esperaba 401)", w.Code)
	}
}

func TestBasicAuth_RejectsMissingHeader(t *testing.T) {
	t.Parallel()

	r := newAuthRouter(newStubAccounts())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d (esperaba 401)", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("falta el header WWW-Authenticate")
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
