package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type testRequest struct {
	Instrument string `query:"instrument" validate:"required"`
	Days       int    `query:"days" default:"7" validate:"gte=0,lte=3650"`
}

func bindContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateRequest(t *testing.T) {
	c := bindContext("/?instrument=NTPC&days=14")

	r := new(testRequest)
	if errs := ReadAndValidateRequest(c, r); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if r.Instrument != "NTPC" || r.Days != 14 {
		t.Fatalf("bound request = %+v", r)
	}
}

func TestReadAndValidateRequestAppliesDefaults(t *testing.T) {
	c := bindContext("/?instrument=NTPC")

	r := new(testRequest)
	if errs := ReadAndValidateRequest(c, r); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if r.Days != 7 {
		t.Fatalf("days = %d, want default 7", r.Days)
	}
}

func TestReadAndValidateRequestRequired(t *testing.T) {
	c := bindContext("/?days=14")

	r := new(testRequest)
	errs, ok := ReadAndValidateRequest(c, r).([]ValidationError)
	if !ok || len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if errs[0].Code != "ERR_REQUIRED" || errs[0].Field != "Instrument" {
		t.Errorf("error = %+v", errs[0])
	}
	if errs[0].Message != "Instrument is required" {
		t.Errorf("message = %q", errs[0].Message)
	}
}

func TestReadAndValidateRequestRange(t *testing.T) {
	c := bindContext("/?instrument=NTPC&days=9999")

	r := new(testRequest)
	errs, ok := ReadAndValidateRequest(c, r).([]ValidationError)
	if !ok || len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if errs[0].Code != "ERR_LTE" {
		t.Errorf("code = %q, want ERR_LTE", errs[0].Code)
	}
	if errs[0].Params["max"] != "3650" {
		t.Errorf("params = %v", errs[0].Params)
	}
}
