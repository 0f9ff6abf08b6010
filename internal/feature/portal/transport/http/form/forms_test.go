package form

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bind(t *testing.T, values url.Values, dst any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c.ShouldBind(dst)
}

func TestRegister_Valid(t *testing.T) {
	var f Register
	err := bind(t, url.Values{
		"email":     {"a@gym.test"},
		"password":  {"secret1"},
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
	}, &f)

	require.NoError(t, err)
	assert.Equal(t, "a@gym.test", f.Email)
	assert.Equal(t, "Lovelace", f.LastName)
}

func TestFieldErrors_Register(t *testing.T) {
	var f Register
	err := bind(t, url.Values{
		"email":    {"not-an-email"},
		"password": {"abc"},
	}, &f)
	require.Error(t, err)

	got := FieldErrors(err)

	assert.Equal(t, map[string]string{
		"email":     "Enter a valid email address",
		"password":  "Must be at least 6 characters",
		"firstName": "This field is required",
		"lastName":  "This field is required",
	}, got)
}

func TestFieldErrors_Login(t *testing.T) {
	var f Login
	err := bind(t, url.Values{}, &f)
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"email":    "This field is required",
		"password": "This field is required",
	}, FieldErrors(err))
}

func TestFieldErrors_NotValidation(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "firstName", fieldName("FirstName"))
	assert.Equal(t, "email", fieldName("Email"))
	assert.Equal(t, "", fieldName(""))
}
