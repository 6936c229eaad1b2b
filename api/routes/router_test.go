package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/clubsupply/supplydesk-backend/internal/auth"
	cartsvc "github.com/clubsupply/supplydesk-backend/internal/cart"
	catalogsvc "github.com/clubsupply/supplydesk-backend/internal/catalog"
	reconcilesvc "github.com/clubsupply/supplydesk-backend/internal/reconcile"
	pkgauth "github.com/clubsupply/supplydesk-backend/pkg/auth"
	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
)

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) IssueChallenge(ctx context.Context, email, purpose string) error {
	return nil
}

func (stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*models.User, error) {
	return &models.User{ID: uuid.New()}, nil
}

func (stubAuthService) ResetPassword(ctx context.Context, input authsvc.ResetPasswordInput) error {
	return nil
}

func (stubAuthService) Login(ctx context.Context, email, password string) (*authsvc.TokenPair, error) {
	return &authsvc.TokenPair{User: &models.User{ID: uuid.New()}, Role: enums.UserRoleUser}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*authsvc.TokenPair, error) {
	return &authsvc.TokenPair{User: &models.User{ID: uuid.New()}, Role: enums.UserRoleUser}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) Create(ctx context.Context, input catalogsvc.CreateInput) (*models.CatalogItem, error) {
	return &models.CatalogItem{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCatalogService) List(ctx context.Context, enabledOnly bool) ([]models.CatalogItem, error) {
	return []models.CatalogItem{}, nil
}

func (stubCatalogService) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	return &models.CatalogItem{ID: id}, nil
}

func (stubCatalogService) Update(ctx context.Context, id uuid.UUID, input catalogsvc.UpdateInput) (*models.CatalogItem, error) {
	return &models.CatalogItem{ID: id}, nil
}

func (stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) Annotate(ctx context.Context, id uuid.UUID, input catalogsvc.AnnotateInput) (*models.CatalogItem, error) {
	return &models.CatalogItem{ID: id}, nil
}

func (stubCatalogService) AnnotateBatch(ctx context.Context, inputs []catalogsvc.BatchAnnotateInput) ([]models.CatalogItem, error) {
	return []models.CatalogItem{}, nil
}

type stubCartService struct{}

func (stubCartService) AddCatalogItems(ctx context.Context, requesterID uuid.UUID, items []cartsvc.AddCatalogItemInput) (*models.Cart, error) {
	return &models.Cart{ID: uuid.New(), RequesterID: requesterID}, nil
}

func (stubCartService) AddCustomItem(ctx context.Context, requesterID uuid.UUID, input cartsvc.AddCustomItemInput) (*models.Cart, error) {
	return &models.Cart{ID: uuid.New(), RequesterID: requesterID}, nil
}

func (stubCartService) GetCartForRequester(ctx context.Context, requesterID uuid.UUID) (*models.Cart, error) {
	return &models.Cart{ID: uuid.New(), RequesterID: requesterID}, nil
}

func (stubCartService) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	return &models.Cart{ID: cartID}, nil
}

func (stubCartService) ListCarts(ctx context.Context) ([]models.Cart, error) {
	return []models.Cart{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, cartID uuid.UUID, name string) error {
	return nil
}

func (stubCartService) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	return nil
}

func (stubCartService) UpdateLineItem(ctx context.Context, id uuid.UUID, input cartsvc.UpdateLineItemInput) (*models.LineItem, error) {
	return &models.LineItem{ID: id}, nil
}

func (stubCartService) UpdateLineItemsStrict(ctx context.Context, inputs []cartsvc.BatchUpdateInput) ([]models.LineItem, error) {
	return []models.LineItem{}, nil
}

func (stubCartService) UpdateLineItemsCatalogFiltered(ctx context.Context, inputs []cartsvc.BatchUpdateInput) ([]models.LineItem, error) {
	return []models.LineItem{}, nil
}

type stubReconcileService struct{}

func (stubReconcileService) CatalogSummary(ctx context.Context) ([]reconcilesvc.CatalogSummaryRow, error) {
	return []reconcilesvc.CatalogSummaryRow{}, nil
}

func (stubReconcileService) CustomItems(ctx context.Context) ([]models.LineItem, error) {
	return []models.LineItem{}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		// zero windows keep the rate limit middleware out of the way
		AuthRateLimit: config.AuthRateLimitConfig{},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testRouterConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	router := NewRouter(Deps{
		Config:       cfg,
		Logger:       logg,
		Sessions:     stubSessions{},
		AuthService:  stubAuthService{},
		CatalogSvc:   stubCatalogService{},
		CartSvc:      stubCartService{},
		ReconcileSvc: stubReconcileService{},
	})
	return router, cfg
}

func bearerToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "someone@club.example",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRoutesRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartRoutesRejectBosslevel(t *testing.T) {
	router, cfg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.UserRoleBosslevel))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCartFetchDispatchesForUser(t *testing.T) {
	router, cfg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminRoutesRejectUserRole(t *testing.T) {
	router, cfg := newTestRouter(t)

	paths := []string{
		"/api/admin/v1/catalog/",
		"/api/admin/v1/carts/",
		"/api/admin/v1/reports/catalog",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearerToken(t, cfg, enums.UserRoleUser))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 got %d", path, resp.Code)
		}
	}
}

func TestAdminRoutesDispatchForBosslevel(t *testing.T) {
	router, cfg := newTestRouter(t)

	paths := []string{
		"/api/admin/v1/catalog/",
		"/api/admin/v1/carts/",
		"/api/admin/v1/reports/catalog",
		"/api/admin/v1/reports/custom",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearerToken(t, cfg, enums.UserRoleBosslevel))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}
