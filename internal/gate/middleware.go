package gate

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// Context keys shared with downstream handlers.
const (
	CtxUserID = "user_id"
	CtxTier   = "tier"
)

type Gate struct {
	users    domain.UserRepository
	reserver UsageReserver
	fallback UsageReserver
	log      *zap.SugaredLogger
}

// NewGate builds the subscription gate. reserver may be nil (no Redis), in
// which case every check runs on the fallback recount.
func NewGate(users domain.UserRepository, reserver, fallback UsageReserver, log *zap.SugaredLogger) *Gate {
	return &Gate{users: users, reserver: reserver, fallback: fallback, log: log}
}

// Check claims one quota slot for userID and returns the caller's tier. A
// *domain.QuotaError return means the window is exhausted.
func (g *Gate) Check(ctx *gin.Context, userID string) (domain.Tier, error) {
	user, err := g.users.FindByID(ctx.Request.Context(), userID)
	if err != nil || user == nil {
		if err != nil {
			g.log.Errorw("gate: fetch user failed", "user_id", userID, "err", err)
		}
		return "", domain.ErrUnauthenticated
	}

	policy := PolicyFor(user.Tier)
	if policy.Window == WindowNone {
		return user.Tier, nil
	}

	now := time.Now().UTC()
	allowed, used, err := g.reserve(ctx, userID, policy, now)
	if err != nil {
		// Fail-open: a broken counter must not take chat down.
		g.log.Warnw("gate: all reservers failed, allowing request", "user_id", userID, "err", err)
		return user.Tier, nil
	}
	if !allowed {
		g.log.Infow("gate: quota exhausted", "user_id", userID, "tier", user.Tier, "window", policy.Window, "used", used)
		return "", policy.Exceeded()
	}
	return user.Tier, nil
}

func (g *Gate) reserve(ctx *gin.Context, userID string, policy Policy, now time.Time) (bool, int64, error) {
	reqCtx := ctx.Request.Context()
	if g.reserver != nil {
		allowed, used, err := g.reserver.Reserve(reqCtx, userID, policy, now)
		if err == nil {
			return allowed, used, nil
		}
		g.log.Warnw("gate: reserver failed, falling back to recount", "user_id", userID, "err", err)
	}
	if g.fallback != nil {
		return g.fallback.Reserve(reqCtx, userID, policy, now)
	}
	return false, 0, errNoReserver
}

var errNoReserver = &noReserverError{}

type noReserverError struct{}

func (*noReserverError) Error() string { return "no usage reserver configured" }

// chatBody is the slice of the request the gate inspects before claiming a
// slot. Bound with ShouldBindBodyWith so the handler can re-read the body.
type chatBody struct {
	Message string `json:"message"`
}

// Middleware gates a request on the caller's subscription. On success the
// resolved tier is attached to the context so downstream skips the lookup.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		// Invalid input must not consume a slot, so the body is checked
		// before the counter is touched.
		var body chatBody
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if strings.TrimSpace(body.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			c.Abort()
			return
		}

		tier, err := g.Check(c, userID)
		if err != nil {
			if qe, ok := err.(*domain.QuotaError); ok {
				c.JSON(http.StatusForbidden, gin.H{
					"error":   string(qe.Window) + " limit exceeded",
					"message": qe.Message,
					"code":    qe.Code,
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		c.Set(CtxTier, tier.String())
		c.Next()
	}
}
