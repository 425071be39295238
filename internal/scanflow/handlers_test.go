package scanflow

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"vms-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupScanApp(t *testing.T, visitors map[string]*models.Visitor) (*fiber.App, *Controller) {
	t.Helper()
	c, _ := newTestController(t, visitors)
	h := &Handlers{Controller: c}
	app := fiber.New()
	app.Post("/api/v1/checkin/verify", h.Verify)
	app.Get("/api/v1/checkin/handoff/:key", h.Handoff)
	return app, c
}

func postVerify(t *testing.T, app *fiber.App, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/v1/checkin/verify", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestVerifyEndpointCheckIn(t *testing.T) {
	app, _ := setupScanApp(t, map[string]*models.Visitor{
		"482913": {ID: 42, FullName: "Dana Visitor", Status: "APPROVED"},
	})

	code, out := postVerify(t, app, map[string]interface{}{"payload": "482913", "station": "gate-1"})
	require.Equal(t, 200, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, ScreenCheckinProcess, data["nextScreen"])
	notif := data["notification"].(map[string]interface{})
	assert.Equal(t, "success", notif["kind"])
}

func TestVerifyEndpointDirectionField(t *testing.T) {
	app, _ := setupScanApp(t, map[string]*models.Visitor{
		"482913": {ID: 9, FullName: "Lee", Status: "CHECKED_IN"},
	})

	code, out := postVerify(t, app, map[string]interface{}{
		"payload": "482913", "station": "gate-1", "direction": "check-out",
	})
	require.Equal(t, 200, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, ScreenCheckoutSummary, data["nextScreen"])
	key, _ := data["handoffKey"].(string)
	require.NotEmpty(t, key)

	req := httptest.NewRequest("GET", "/api/v1/checkin/handoff/"+key, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// single use: the second fetch misses
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/checkin/handoff/"+key, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestVerifyEndpointGuardConflict(t *testing.T) {
	app, _ := setupScanApp(t, map[string]*models.Visitor{
		"111222": {ID: 7, FullName: "Sam", Status: "CHECKED_OUT"},
	})

	code, out := postVerify(t, app, map[string]interface{}{"payload": "111222", "station": "gate-1"})
	require.Equal(t, 409, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Already Checked Out", errObj["message"])
	details := errObj["details"].(map[string]interface{})
	notif := details["notification"].(map[string]interface{})
	assert.Equal(t, "Already Checked Out", notif["title"])
}

func TestVerifyEndpointNotFoundThenBusy(t *testing.T) {
	app, _ := setupScanApp(t, map[string]*models.Visitor{})

	code, out := postVerify(t, app, map[string]interface{}{"payload": "999999", "station": "gate-1"})
	require.Equal(t, 404, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Visitor Not Found", errObj["message"])

	// the popup is still showing: next attempt from the same station drops
	code, _ = postVerify(t, app, map[string]interface{}{"payload": "999999", "station": "gate-1"})
	assert.Equal(t, 429, code)
}

func TestVerifyEndpointRequiresPayload(t *testing.T) {
	app, _ := setupScanApp(t, map[string]*models.Visitor{})
	code, _ := postVerify(t, app, map[string]interface{}{"station": "gate-1"})
	assert.Equal(t, 400, code)
}

func TestHandoffEndpointExpired(t *testing.T) {
	app, c := setupScanApp(t, map[string]*models.Visitor{
		"482913": {ID: 9, FullName: "Lee", Status: "CHECKED_IN"},
	})
	c.Handoff.TTL = time.Minute

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/checkin/handoff/unknown-key", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
