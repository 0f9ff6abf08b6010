package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_backend/internal/feature/portal/domain"
)

func TestTemplates_Parse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"login.html", "register.html", "dashboard.html", "error.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_EscapeValues(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "login.html", Page{
		Title:  "Sign in",
		Notice: &Notice{Kind: NoticeError, Text: "Invalid email or password"},
		Values: map[string]string{"email": `"><script>alert(1)</script>`},
		Errors: map[string]string{"password": "This field is required"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "Invalid email or password")
	assert.Contains(t, out, "This field is required")
}

func TestTemplates_Dashboard(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	d := domain.Dashboard{
		Greeting: "Welcome back, Ada",
		Cards:    []domain.Card{{Title: "Classes today", Value: "12"}},
	}
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "dashboard.html", Page{Title: "Dashboard", Dashboard: &d}))

	assert.Contains(t, buf.String(), "Welcome back, Ada")
	assert.Contains(t, buf.String(), "Classes today")
}
