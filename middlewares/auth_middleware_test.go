package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthylife/config"
	"healthylife/models"
	"healthylife/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func probeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint("userID"),
			"email":   c.GetString("email"),
		})
	})
	return r
}

func probe(t *testing.T, r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := probeRouter()

	for _, header := range []string{"", "Token abc", "Bearer"} {
		if w := probe(t, r, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d, want 401", header, w.Code)
		}
	}
}

func TestAuthMiddlewareMissingSecretIsServerError(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	r := probeRouter()

	if w := probe(t, r, "Bearer whatever"); w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500 when JWT_SECRET is unset", w.Code)
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := probeRouter()

	token, err := utils.GenerateJWT(42, "anna@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := probe(t, r, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID uint   `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != 42 || resp.Email != "anna@example.com" {
		t.Fatalf("claims on context = %+v", resp)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := probeRouter()

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	future := time.Now().Add(time.Hour).Unix()
	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other-secret"),
			jwt.MapClaims{"userId": 1, "exp": future})},
		{"expired", sign(jwt.SigningMethodHS256, []byte("test-secret"),
			jwt.MapClaims{"userId": 1, "exp": time.Now().Add(-time.Hour).Unix()})},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
			jwt.MapClaims{"userId": 1, "exp": future})},
	}
	for _, c := range cases {
		if w := probe(t, r, "Bearer "+c.token); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", c.name, w.Code)
		}
	}
}

func TestAuthMiddlewareResolvesLegacyEmailToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	user := models.User{Email: "legacy@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	legacy := func(email string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": email,
			"exp":   time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	r := probeRouter()

	w := probe(t, r, "Bearer "+legacy("legacy@example.com"))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		UserID uint `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != user.ID {
		t.Fatalf("user_id = %d, want %d from the email lookup", resp.UserID, user.ID)
	}

	if w := probe(t, r, "Bearer "+legacy("ghost@example.com")); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: status %d, want 401", w.Code)
	}
}
