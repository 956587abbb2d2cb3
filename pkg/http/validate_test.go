package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type windowRequest struct {
	Days int `query:"days" default:"360" validate:"gte=1,lte=3650"`
}

func bindQuery(t *testing.T, q string) (*windowRequest, interface{}) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+q, nil), httptest.NewRecorder())
	req := &windowRequest{}
	return req, ReadAndValidateRequest(c, req)
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	req, verr := bindQuery(t, "")
	require.Nil(t, verr)
	assert.Equal(t, 360, req.Days)

	req, verr = bindQuery(t, "days=30")
	require.Nil(t, verr)
	assert.Equal(t, 30, req.Days)
}

func TestReadAndValidateRequestErrors(t *testing.T) {
	_, verr := bindQuery(t, "days=5000")
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_LTE", errs[0].Code)
	assert.Equal(t, "days", errs[0].Field)
	assert.Equal(t, "days must be less than or equal to 3650", errs[0].Message)
	assert.Equal(t, "3650", errs[0].Params["max"])
}
