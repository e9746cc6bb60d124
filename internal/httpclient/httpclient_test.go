package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUserAgent(t *testing.T) {
	cases := []struct {
		name   string
		opts   Options
		header string
		want   string
	}{
		{"default", Options{}, "", DefaultUserAgent},
		{"configured", Options{UserAgent: "custom/2"}, "", "custom/2"},
		{"request wins", Options{}, "caller/3", "caller/3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("User-Agent")
			}))
			defer srv.Close()

			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tc.header != "" {
				req.Header.Set("User-Agent", tc.header)
			}

			resp, err := New(tc.opts).Do(req)
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			resp.Body.Close()

			if got != tc.want {
				t.Errorf("User-Agent = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	if c := New(Options{}); c.Timeout != 180*time.Second {
		t.Errorf("default timeout = %v", c.Timeout)
	}
	if c := New(Options{Timeout: 5 * time.Second}); c.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", c.Timeout)
	}
}
