package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestControllerFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/products/:id/reviews", "products"},
		{"/api/v1/orders/myorders", "orders"},
		{"/api/v2/cart", "cart"},
		{"/api/v1/:id", ""},
		{"/health", "health"},
		{"/version", "version"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, controllerFromRoute(tt.route))
		})
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("version"))
	assert.False(t, isVersionSegment("products"))
}

func TestProfiling_LabelsHandlerContext(t *testing.T) {
	router := gin.New()
	router.Use(Profiling(DefaultProfilingConfig()))

	labels := map[string]string{}
	router.GET("/api/v1/products/:id", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/products/:id", labels[ProfilingLabelRoute])
	assert.Equal(t, http.MethodGet, labels[ProfilingLabelMethod])
	assert.Equal(t, "products", labels[ProfilingLabelController])
}

func TestProfiling_SkipsAndDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilingConfig
		path string
	}{
		{"skip path", DefaultProfilingConfig(), "/health"},
		{"skip prefix", DefaultProfilingConfig(), "/uploads/a.png"},
		{"disabled", ProfilingConfig{Enabled: false}, "/api/v1/products"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Profiling(tt.cfg))

			labelled := false
			router.GET("/*any", func(c *gin.Context) {
				pprof.ForLabels(c.Request.Context(), func(string, string) bool {
					labelled = true
					return false
				})
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, labelled)
		})
	}
}
