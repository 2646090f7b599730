package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestExportGuardsStayOnExportRoutes(t *testing.T) {
	e := echo.New()
	calls := 0
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			calls++
			return c.NoContent(http.StatusForbidden)
		}
	}
	registerExportRoutes(e.Group(""), deny)

	serve := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNotFound, serve("/olmayan-sayfa"))
	assert.Equal(t, http.StatusNotFound, serve("/api/exports/yok"))
	assert.Zero(t, calls)

	assert.Equal(t, http.StatusForbidden, serve("/api/exports/documents.zip"))
	assert.Equal(t, http.StatusForbidden, serve("/cases/abc/summary.pdf"))
	assert.Equal(t, 2, calls)
}
