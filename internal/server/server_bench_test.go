package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/otherjamesbrown/color-service/internal/compose"
	"github.com/otherjamesbrown/color-service/internal/identity"
)

func BenchmarkServeLine(b *testing.B) {
	resolver := identity.NewResolver(
		identity.WithLookup(func(key string) (string, bool) {
			switch key {
			case identity.HostnameEnv:
				return "bench-host", true
			case identity.NamespaceEnv:
				return "bench", true
			}
			return "", false
		}),
		identity.WithNamespaceFile(filepath.Join(b.TempDir(), "namespace")),
	)
	router := NewRouter(Options{Composer: compose.New("orange", "bench", resolver)})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req.Clone(req.Context()))
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status: %d", rr.Code)
		}
	}
}
