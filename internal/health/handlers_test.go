package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"vms-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) Ping() error { return nil }

func setupHealthApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := &Handlers{Rdb: rdb, DB: okPinger{}, HealthAdminKey: "admin-key"}
	app := fiber.New()
	app.Get("/health/json", h.JSON)
	app.Get("/reset", h.Reset)
	return app, mr
}

func TestHealthJSON(t *testing.T) {
	app, mr := setupHealthApp(t)
	mr.Set(middleware.KeyReqTotal, "10")
	mr.Set(middleware.KeyReqErrors, "2")
	mr.Set(middleware.KeyResTime, "500")
	mr.Set(middleware.KeyResCount, "10")

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "vms-api", out["service"])
	assert.Equal(t, "ok", out["status"])

	traffic := out["traffic"].(map[string]interface{})
	assert.Equal(t, float64(10), traffic["totalRequests"])
	assert.Equal(t, float64(8), traffic["successCount"])
	assert.Equal(t, float64(2), traffic["failedCount"])
	assert.Equal(t, "80.0", traffic["successRate"])
	assert.Equal(t, "50.00", traffic["avgResponseTime"])

	deps := out["dependencies"].(map[string]interface{})
	dbDep := deps["database"].(map[string]interface{})
	assert.Equal(t, "connected", dbDep["status"])
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "connected", redisDep["status"])
}

func TestHealthJSONRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	h := &Handlers{Rdb: rdb, DB: okPinger{}}
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil), -1)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "issue", out["status"])
	deps := out["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "error", redisDep["status"])
}

func TestResetRequiresKey(t *testing.T) {
	app, _ := setupHealthApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/reset", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/reset?key=wrong", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestResetClearsStats(t *testing.T) {
	app, mr := setupHealthApp(t)
	mr.Set(middleware.KeyReqTotal, "100")
	mr.Set(middleware.KeyReqErrors, "5")

	resp, err := app.Test(httptest.NewRequest("GET", "/reset?key=admin-key", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	assert.False(t, mr.Exists(middleware.KeyReqTotal))
	assert.False(t, mr.Exists(middleware.KeyReqErrors))
	assert.True(t, mr.Exists(middleware.KeyStartTime))
}
