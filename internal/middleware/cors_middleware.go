package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lifenotes-backend-go/internal/config" // To get CLIENT_URL for AllowOrigins
)

// CORSMiddleware configures Cross-Origin Resource Sharing (CORS) for the application.
// It allows requests from the CLIENT_URL origins in the application configuration.
// CLIENT_URL may be a comma-separated list; trailing slashes are dropped because
// browsers send the Origin header without one.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	if appConfig == nil || appConfig.ClientURL == "" {
		// Without an origin the dashboard cannot reach the API at all.
		panic("ClientURL for CORS is not configured")
	}

	// Split and normalize the configured origins.
	var origins []string
	for _, origin := range strings.Split(appConfig.ClientURL, ",") {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}

	return cors.New(cors.Config{
		// AllowOrigins lists the origins allowed to make cross-origin requests.
		AllowOrigins: origins,

		// AllowMethods lists the methods allowed when accessing the resource.
		// PATCH covers the lesson engagement routes and payment confirmation.
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},

		// AllowHeaders lists the headers allowed in the actual request.
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},

		// ExposeHeaders lists the response headers the browser may read.
		ExposeHeaders: []string{"Content-Length"},

		// AllowCredentials lets the request include cookies or HTTP authentication.
		AllowCredentials: true,

		// MaxAge is how long the result of a preflight request can be cached.
		MaxAge: 12 * time.Hour,
	})
}
