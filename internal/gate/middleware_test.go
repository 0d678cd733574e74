package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}
func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateTier(ctx context.Context, userID string, tier domain.Tier, status string) error {
	return nil
}
func (f *fakeUserRepo) SetSubscription(ctx context.Context, userID string, tier domain.Tier, status, subscriptionID, provider string) error {
	return nil
}
func (f *fakeUserRepo) IncrementUsage(ctx context.Context, userID string) error { return nil }

// fakeReserver hands out slots from a fixed prior count, like a counter that
// already holds `used` entries for the window.
type fakeReserver struct {
	used  int64
	calls int
	err   error
}

func (f *fakeReserver) Reserve(ctx context.Context, userID string, policy Policy, now time.Time) (bool, int64, error) {
	f.calls++
	if f.err != nil {
		return false, 0, f.err
	}
	if !policy.Allows(f.used) {
		return false, f.used, nil
	}
	f.used++
	return true, f.used, nil
}

func gateRouter(t *testing.T, g *Gate, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat", func(c *gin.Context) {
		if userID != "" {
			c.Set(CtxUserID, userID)
		}
		c.Next()
	}, g.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tier": c.GetString(CtxTier)})
	})
	return r
}

func doPost(r *gin.Engine) *httptest.ResponseRecorder {
	return doPostBody(r, `{"message":"hello"}`)
}

func doPostBody(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGateUnauthenticated(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{}}
	g := NewGate(users, &fakeReserver{}, nil, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated but unknown user: same outcome.
	w = doPost(gateRouter(t, g, "ghost"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateFreeTierFourthRequest(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierFree},
	}}
	g := NewGate(users, &fakeReserver{used: 3}, nil, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, "u1"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.CodeDailyLimitExceeded, body["code"])
	assert.Contains(t, body["message"], "Upgrade")
}

func TestGateProTierBoundary(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierPro},
	}}

	// 99 prior messages this month: the 100th goes through.
	g := NewGate(users, &fakeReserver{used: 99}, nil, zap.NewNop().Sugar())
	w := doPost(gateRouter(t, g, "u1"))
	assert.Equal(t, http.StatusOK, w.Code)

	// 100 prior: rejected with the monthly code.
	g = NewGate(users, &fakeReserver{used: 100}, nil, zap.NewNop().Sugar())
	w = doPost(gateRouter(t, g, "u1"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.CodeMonthlyLimitExceeded, body["code"])
}

func TestGateEngineerUnlimited(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierEngineer},
	}}
	// Reserver would deny anything; it must never be consulted.
	g := NewGate(users, &fakeReserver{used: 1 << 30}, nil, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "engineer", body["tier"])
}

func TestGateFallbackOnReserverError(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierFree},
	}}
	broken := &fakeReserver{err: errors.New("redis down")}
	fallback := &fakeReserver{used: 3}
	g := NewGate(users, broken, fallback, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, "u1"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGateFailOpenWhenEverythingIsDown(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierFree},
	}}
	broken := &fakeReserver{err: errors.New("redis down")}
	alsoBroken := &fakeReserver{err: errors.New("db down")}
	g := NewGate(users, broken, alsoBroken, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateRejectedInputLeavesCounterUntouched(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierFree},
	}}

	for _, body := range []string{
		`{"message":"   "}`,
		`{"message":""}`,
		`{}`,
		`not json`,
	} {
		reserver := &fakeReserver{}
		g := NewGate(users, reserver, nil, zap.NewNop().Sugar())

		w := doPostBody(gateRouter(t, g, "u1"), body)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Zero(t, reserver.calls, "body %q claimed a slot", body)
	}
}

func TestGateValidRequestClaimsOneSlot(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierFree},
	}}
	reserver := &fakeReserver{}
	g := NewGate(users, reserver, nil, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reserver.calls)
	assert.Equal(t, int64(1), reserver.used)
}

func TestGateAttachesTier(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Tier: domain.TierPro},
	}}
	g := NewGate(users, &fakeReserver{}, nil, zap.NewNop().Sugar())

	w := doPost(gateRouter(t, g, "u1"))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pro", body["tier"])
}
