package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter configura el router con middleware y todas las rutas del servicio
func NewRouter(handler *API, frontendURL string) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(CORSMiddleware(frontendURL))

	// Health check y métricas
	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Customers
	router.POST("/customers/", handler.CreateCustomer)
	router.GET("/customers/", handler.ListCustomers)
	router.PATCH("/customers/:id", handler.UpdateCustomer)
	router.DELETE("/customers/:id", handler.DeleteCustomer)

	// TimeSeries
	router.POST("/timeseries/", handler.CreateTimeSeries)
	router.GET("/timeseries/:customer_id", handler.ListTimeSeries)

	// Calculations
	router.GET("/calculations/:customer_id", handler.GetCalculations)

	return router
}

// RequestIDMiddleware asigna un identificador único a cada request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// CORSMiddleware restringe el acceso cross-origin al frontend configurado,
// con credenciales permitidas
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", frontendURL)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
