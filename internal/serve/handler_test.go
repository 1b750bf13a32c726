package serve

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, files map[string]string) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resolver, rec, _ := newTestResolver(t, files)
	r := gin.New()
	NewHandler(resolver).RegisterRoutes(r)
	return r, rec.ID
}

func TestServeFileOK(t *testing.T) {
	router, courseID := newTestRouter(t, map[string]string{
		"lessons/one.html": "<html>one</html>",
	})

	req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/lessons/one.html?token="+testToken, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "<html>one</html>" {
		t.Fatalf("unexpected body %q", body)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
}

func TestServeFileWrongToken(t *testing.T) {
	router, courseID := newTestRouter(t, map[string]string{"index.html": "<html></html>"})

	for _, q := range []string{"", "?token=wrong", "?token=" + testToken[:4]} {
		req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/index.html"+q, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusForbidden {
			t.Fatalf("query %q: expected 403, got %d", q, resp.Code)
		}
	}
}

func TestServeFileUnknownCourse(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/courses/unknown/index.html?token="+testToken, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestServeFileMissing(t *testing.T) {
	router, courseID := newTestRouter(t, map[string]string{"index.html": "<html></html>"})

	req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/absent.html?token="+testToken, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestServeIndexRedirectsToEntryPoint(t *testing.T) {
	router, courseID := newTestRouter(t, map[string]string{"context.html": "<html></html>"})

	req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/?token="+testToken, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	loc := resp.Header().Get("Location")
	want := "/courses/" + courseID + "/context.html?token=" + url.QueryEscape(testToken)
	if loc != want {
		t.Fatalf("expected redirect to %s, got %s", want, loc)
	}
}

func TestServeIndexListsHTMLFiles(t *testing.T) {
	router, courseID := newTestRouter(t, map[string]string{
		"pages/a.html": "<html>a</html>",
		"pages/b.html": "<html>b</html>",
	})

	req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/?token="+testToken, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"pages/a.html", "pages/b.html", "token=" + url.QueryEscape(testToken)} {
		if !strings.Contains(body, want) {
			t.Fatalf("listing missing %q:\n%s", want, body)
		}
	}
}

func TestServeIndexRequiresToken(t *testing.T) {
	router, courseID := newTestRouter(t, map[string]string{"index.html": "<html></html>"})

	req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
