package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	NIM      string `json:"nim" binding:"required,min=4,max=20"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

func newTestContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindUsesJSONFieldNames(t *testing.T) {
	Setup()

	var dst loginPayload
	fields := Bind(newTestContext(`{"nim": "ab"}`), &dst)
	require.NotNil(t, fields)

	// Error keys come from the json tags, not Go field names.
	require.Contains(t, fields, "nim")
	require.Contains(t, fields, "password")
	require.NotContains(t, fields, "NIM")
}

func TestBindValidPayload(t *testing.T) {
	Setup()

	var dst loginPayload
	fields := Bind(newTestContext(`{"nim": "231000001", "password": "rahasia"}`), &dst)
	require.Nil(t, fields)
	require.Equal(t, "231000001", dst.NIM)
}

func TestTranslateErrorsNonValidation(t *testing.T) {
	Setup()

	var dst loginPayload
	fields := Bind(newTestContext(`{not json`), &dst)
	require.NotNil(t, fields)
	require.Contains(t, fields, "detail")
}
