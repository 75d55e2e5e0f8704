package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"treadmill_pacer/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testKey = "test-signing-key"

type createCall struct {
	username, hash string
	age            int
}

// mockAuthRepo is a lightweight in-test mock for repository.Authorization.
type mockAuthRepo struct {
	CreateFn        func(username, hash string, age int) (int, error)
	GetByUsernameFn func(username string) (*models.Athlete, error)
	GetByIDFn       func(id int) (*models.Athlete, error)

	creates []createCall
	lookups []string
}

func (m *mockAuthRepo) Create(username, hash string, age int) (int, error) {
	m.creates = append(m.creates, createCall{username, hash, age})
	return m.CreateFn(username, hash, age)
}

func (m *mockAuthRepo) GetByUsername(username string) (*models.Athlete, error) {
	m.lookups = append(m.lookups, username)
	return m.GetByUsernameFn(username)
}

func (m *mockAuthRepo) GetByID(id int) (*models.Athlete, error) {
	return m.GetByIDFn(id)
}

func newTestAuth(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, AuthConfig{SigningKey: testKey, TokenTTL: time.Hour})
}

// athleteWithPassword returns a stored athlete whose hash matches password.
func athleteWithPassword(t *testing.T, id int, password string) *models.Athlete {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	return &models.Athlete{ID: id, Username: "runner", Age: 30, PasswordHash: hash}
}

func TestSignUp_StoresBcryptHashAndAge(t *testing.T) {
	repo := &mockAuthRepo{CreateFn: func(string, string, int) (int, error) { return 42, nil }}

	id, err := newTestAuth(repo).SignUp("alice", "s3cr3t", 34)
	if err != nil || id != 42 {
		t.Fatalf("SignUp = %d, %v", id, err)
	}
	if len(repo.creates) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(repo.creates))
	}
	got := repo.creates[0]
	if got.username != "alice" || got.age != 34 {
		t.Fatalf("unexpected create args: %+v", got)
	}
	if got.hash == "s3cr3t" || bcrypt.CompareHashAndPassword([]byte(got.hash), []byte("s3cr3t")) != nil {
		t.Fatalf("stored value is not a bcrypt hash of the password: %q", got.hash)
	}
}

func TestSignUp_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
		age      int
		want     error
	}{
		{"blank password", "bob", "   ", 40, nil},
		{"missing username", "", "pw", 30, ErrInvalidProfile},
		{"blank username", "  ", "pw", 30, ErrInvalidProfile},
		{"age zero", "zoe", "pw", 0, ErrInvalidProfile},
		{"age 220", "zoe", "pw", 220, ErrInvalidProfile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockAuthRepo{CreateFn: func(string, string, int) (int, error) {
				t.Fatal("Create must not be called")
				return 0, nil
			}}
			_, err := newTestAuth(repo).SignUp(tc.username, tc.password, tc.age)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSignUp_RepoError(t *testing.T) {
	repo := &mockAuthRepo{CreateFn: func(string, string, int) (int, error) { return 0, errors.New("db down") }}
	if _, err := newTestAuth(repo).SignUp("carl", "pass123", 28); err == nil {
		t.Fatalf("expected repo error")
	}
}

func TestAthleteLookup(t *testing.T) {
	repo := &mockAuthRepo{GetByIDFn: func(id int) (*models.Athlete, error) {
		if id == 5 {
			return &models.Athlete{ID: 5, Username: "fay", Age: 41}, nil
		}
		return nil, nil
	}}
	svc := newTestAuth(repo)

	a, err := svc.Athlete(5)
	if err != nil || a.Age != 41 {
		t.Fatalf("unexpected athlete %+v, err %v", a, err)
	}
	if _, err := svc.Athlete(6); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNewAuthService_Defaults(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, AuthConfig{})
	if svc.ttl != defaultTokenTTL || string(svc.key) != defaultSigningKey {
		t.Fatalf("defaults not applied: ttl=%v key=%q", svc.ttl, svc.key)
	}
}

func TestGenerateToken_RoundTripsAthleteID(t *testing.T) {
	stored := athleteWithPassword(t, 7, "letmein")
	repo := &mockAuthRepo{GetByUsernameFn: func(string) (*models.Athlete, error) { return stored, nil }}
	svc := newTestAuth(repo)

	token, err := svc.GenerateToken("runner", "letmein")
	if err != nil || token == "" {
		t.Fatalf("GenerateToken = %q, %v", token, err)
	}
	id, err := svc.ParseToken(token)
	if err != nil || id != 7 {
		t.Fatalf("ParseToken = %d, %v", id, err)
	}
	if len(repo.lookups) != 1 || repo.lookups[0] != "runner" {
		t.Fatalf("unexpected lookups: %v", repo.lookups)
	}
}

func TestGenerateToken_Failures(t *testing.T) {
	stored := athleteWithPassword(t, 1, "correct")
	cases := []struct {
		name   string
		lookup func(string) (*models.Athlete, error)
		want   error
	}{
		{"unknown athlete", func(string) (*models.Athlete, error) { return nil, nil }, ErrUserNotFound},
		{"wrong password", func(string) (*models.Athlete, error) { return stored, nil }, ErrInvalidPassword},
		{"repo failure", func(string) (*models.Athlete, error) { return nil, errors.New("query failed") }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestAuth(&mockAuthRepo{GetByUsernameFn: tc.lookup})
			_, err := svc.GenerateToken("runner", "wrong")
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseToken_AcceptsIssuedToken(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	token, err := svc.issueToken(99)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if id, err := svc.ParseToken(token); err != nil || id != 99 {
		t.Fatalf("ParseToken = %d, %v", id, err)
	}
}

func signedClaims(t *testing.T, method jwt.SigningMethod, key any, expires time.Time) string {
	t.Helper()
	tk := jwt.NewWithClaims(method, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(expires.Add(-time.Hour)),
		},
		AthleteID: 5,
	})
	s, err := tk.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestParseToken_Rejections(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	later := time.Now().Add(time.Hour)

	cases := map[string]string{
		"malformed":    "not-a-jwt",
		"foreign key":  signedClaims(t, jwt.SigningMethodHS256, []byte("different-key"), later),
		"expired":      signedClaims(t, jwt.SigningMethodHS256, []byte(testKey), time.Now().Add(-2*time.Hour)),
		"non-HMAC alg": signedClaims(t, jwt.SigningMethodRS256, rsaKey, later),
		"empty":        "",
	}
	svc := newTestAuth(&mockAuthRepo{})
	for name, token := range cases {
		if _, err := svc.ParseToken(token); err == nil {
			t.Fatalf("%s: expected ParseToken to fail", name)
		}
	}
}
