package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"medstock/internal/repository"
	"medstock/internal/service"
	"medstock/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorContextKey = "actor"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookie sets the access_token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, accessToken string) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
}

// ClearTokenCookie removes the access_token cookie
func ClearTokenCookie(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
}

// deptCacheEntry stores cached department memberships for a user with TTL
type deptCacheEntry struct {
	departmentIDs []uuid.UUID
	expiresAt     time.Time
}

var (
	deptCache    sync.Map // userID -> deptCacheEntry
	deptCacheTTL = 5 * time.Minute
)

// deptRepo holds the repository reference for membership lookups — set via InitActorMiddleware
var deptRepo repository.DepartmentRepository

// InitActorMiddleware sets the repository reference for RequireAuth middleware
func InitActorMiddleware(repo repository.DepartmentRepository) {
	deptRepo = repo
}

// RequireAuth validates the JWT token, resolves the caller's department
// memberships and stores the resulting Actor in the gin context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		actor, err := actorFromClaims(c.Request.Context(), claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// GetActor returns the Actor resolved by RequireAuth for the current request.
func GetActor(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return service.Actor{}, false
	}
	actor, ok := v.(service.Actor)
	return actor, ok
}

func actorFromClaims(ctx context.Context, claims jwt.MapClaims) (service.Actor, error) {
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return service.Actor{}, fmt.Errorf("invalid sub claim: %w", err)
	}

	org, _ := claims["org"].(string)
	orgID, err := uuid.Parse(org)
	if err != nil {
		return service.Actor{}, fmt.Errorf("invalid org claim: %w", err)
	}

	role, ok := claims["role"].(string)
	if !ok {
		return service.Actor{}, fmt.Errorf("role claim missing")
	}
	name, _ := claims["name"].(string)

	deptIDs, err := getDepartmentsForUser(ctx, userID)
	if err != nil {
		return service.Actor{}, err
	}

	return service.Actor{
		UserID:         userID,
		Name:           name,
		OrganizationID: orgID,
		Role:           role,
		DepartmentIDs:  deptIDs,
	}, nil
}

// getDepartmentsForUser returns cached or DB-fetched department IDs for a user
func getDepartmentsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if entry, ok := deptCache.Load(userID); ok {
		cached := entry.(deptCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.departmentIDs, nil
		}
	}

	if deptRepo == nil {
		return nil, fmt.Errorf("actor middleware not initialized")
	}

	ids, err := deptRepo.ListMemberDepartmentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	deptCache.Store(userID, deptCacheEntry{
		departmentIDs: ids,
		expiresAt:     time.Now().Add(deptCacheTTL),
	})

	return ids, nil
}

// ClearActorCache removes cached memberships for a specific user (or all users if zero)
func ClearActorCache(userID uuid.UUID) {
	if userID == uuid.Nil {
		deptCache.Range(func(key, _ interface{}) bool {
			deptCache.Delete(key)
			return true
		})
	} else {
		deptCache.Delete(userID)
	}
}
