package log_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "hellosession/internal/log"
)

type record struct {
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	ReqID  string         `json:"req_id"`
	Path   string         `json:"path"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := applog.Logger()
	applog.SetLogger(applog.New(&buf, level, "json"))
	t.Cleanup(func() { applog.SetLogger(prev) })
	return &buf
}

func records(t *testing.T, buf *bytes.Buffer) []record {
	t.Helper()
	var out []record
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var r record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	return out
}

func TestRequestScopedFields(t *testing.T) {
	buf := capture(t, "info")

	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/x", func(c *fiber.Ctx) error {
		applog.Audit(c, "auth.login.success", map[string]any{"email": "a@b.test"})
		applog.Error(c, "server.error", errors.New("boom"), nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)

	recs := records(t, buf)
	require.Len(t, recs, 2)

	assert.Equal(t, "AUDIT", recs[0].Level)
	assert.Equal(t, "auth.login.success", recs[0].Msg)
	assert.Equal(t, "/x", recs[0].Path)
	assert.NotEmpty(t, recs[0].ReqID)
	assert.Equal(t, "a@b.test", recs[0].Fields["email"])

	assert.Equal(t, "ERROR", recs[1].Level)
	assert.Equal(t, "boom", recs[1].Err)
}

func TestLevelFilter(t *testing.T) {
	buf := capture(t, "warn")

	applog.Info(nil, "ignored", nil)
	applog.Audit(nil, "ignored.too", nil)
	applog.Security(nil, "kept", map[string]any{"reason": "x"})

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0].Msg)
	assert.Equal(t, "WARN", recs[0].Level)
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := applog.New(&buf, "debug", "text")
	l.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}
