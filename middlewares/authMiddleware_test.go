package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationMiddleware())
	r.Use(AuthMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		businessId, err := utils.RequireBusinessId(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"business_id": businessId, "user_id": userId, "correlation_id": cid})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")
	token, err := utils.JwtGenerate("user-1", "biz-1", "owner")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	r := newTestRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if rec.Header().Get(CorrelationHeader) == "" {
				t.Fatalf("correlation id not echoed")
			}
		})
	}
}

func TestAuthMiddleware_RejectsOtherSecret(t *testing.T) {
	t.Setenv("API_SECRET", "first")
	token, err := utils.JwtGenerate("user-1", "biz-1", "owner")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	t.Setenv("API_SECRET", "second")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoaders_OwnerScoped(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := utils.SetBusinessIdInContext(context.Background(), "biz-1")
	mine, err := models.CreateCustomer(ctx, store, &models.NewCustomer{Name: "Mine"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	theirs, err := models.CreateCustomer(utils.SetBusinessIdInContext(context.Background(), "biz-2"), store, &models.NewCustomer{Name: "Theirs"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	ctx = context.WithValue(ctx, loadersKey, NewLoaders(store))
	got, errs := GetCustomers(ctx, []string{mine.ID, theirs.ID, "missing"})
	for _, e := range errs {
		if e != nil {
			t.Fatalf("GetCustomers error: %v", e)
		}
	}
	if len(got) != 3 || got[0] == nil || got[0].Name != "Mine" || got[1] != nil || got[2] != nil {
		t.Fatalf("got = %+v", got)
	}
}
