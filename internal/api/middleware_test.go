package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
)

type admins map[string]bool

func (a admins) IsAdmin(_ context.Context, id string) (bool, error) {
	if id == "broken" {
		return false, errors.New("db down")
	}
	return a[id], nil
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"Anonymous", "", http.StatusUnauthorized},
		{"Guest", "guest", http.StatusForbidden},
		{"Admin", "admin", http.StatusOK},
		{"Lookup failure", "broken", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/staff", func(c *gin.Context) {
				if tt.userID != "" {
					auth.SetUser(c, tt.userID, tt.userID+"@hotel.test")
				}
				c.Next()
			}, RequireAdmin(admins{"admin": true}), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
	}
}

func TestCORSConfig(t *testing.T) {
	prod := corsConfig(true, " https://hotel.example , ,https://admin.hotel.example")
	assert.Equal(t, []string{"https://hotel.example", "https://admin.hotel.example"}, prod.AllowOrigins)

	assert.Empty(t, corsConfig(true, "").AllowOrigins)
	assert.Contains(t, corsConfig(false, "").AllowOrigins, "http://localhost:3000")
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := NewRouter(Config{Logger: zap.NewNop(), Ping: func(context.Context) error { return nil }})
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := NewRouter(Config{Logger: zap.NewNop(), Ping: func(context.Context) error { return errors.New("no db") }})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
