package nickelphot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCatalog(t *testing.T) {
	t.Parallel()

	t.Run("parses a cone search response", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "apass9", r.URL.Query().Get("catalog"))
			assert.NotEmpty(t, r.URL.Query().Get("ra"))
			assert.NotEmpty(t, r.URL.Query().Get("radius"))
			fmt.Fprintln(w, "ra,dec,B,V")
			fmt.Fprintln(w, "180.001,45.002,15.2,14.8")
			fmt.Fprintln(w, "180.003,45.004,16.1,NA")
		}))
		defer server.Close()

		cat := NewHTTPCatalog(server.URL, "apass9", []string{"B", "V"})
		stars, err := cat.ConeSearch(context.Background(),
			unit.AngleFromDeg(180), unit.AngleFromDeg(45), unit.AngleFromDeg(0.2))
		require.NoError(t, err)
		require.Len(t, stars, 2)

		assert.InDelta(t, 180.001, stars[0].RA.Deg(), 1e-9)
		assert.Equal(t, 15.2, stars[0].Mags["B"])
		assert.Equal(t, 14.8, stars[0].Mags["V"])

		// Unparsable magnitude drops that band only.
		assert.Equal(t, 16.1, stars[1].Mags["B"])
		_, ok := stars[1].Mags["V"]
		assert.False(t, ok)
	})

	t.Run("empty response means no matches, not an error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "ra,dec,B,V")
		}))
		defer server.Close()

		cat := NewHTTPCatalog(server.URL, "apass9", []string{"B", "V"})
		stars, err := cat.ConeSearch(context.Background(),
			unit.AngleFromDeg(10), unit.AngleFromDeg(10), unit.AngleFromDeg(0.1))
		require.NoError(t, err)
		assert.Empty(t, stars)
	})

	t.Run("server error surfaces as CatalogQueryError", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		}))
		defer server.Close()

		cat := NewHTTPCatalog(server.URL, "apass9", []string{"B"})
		_, err := cat.ConeSearch(context.Background(),
			unit.AngleFromDeg(10), unit.AngleFromDeg(10), unit.AngleFromDeg(0.1))
		var cqe *CatalogQueryError
		require.True(t, errors.As(err, &cqe))
		assert.Equal(t, "apass9", cqe.Catalog)
	})

	t.Run("short rows surface as CatalogQueryError", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "180.0,45.0")
		}))
		defer server.Close()

		cat := NewHTTPCatalog(server.URL, "apass9", []string{"B", "V"})
		_, err := cat.ConeSearch(context.Background(),
			unit.AngleFromDeg(180), unit.AngleFromDeg(45), unit.AngleFromDeg(0.1))
		var cqe *CatalogQueryError
		require.True(t, errors.As(err, &cqe))
	})
}
