package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OFFIS-RIT/rhetorik/pkg/ai"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/cache"

	"golang.org/x/time/rate"
)

const paragraph = "Die Regierung kündigte am Montag ein umfangreiches Maßnahmenpaket an, das Kritiker für unzureichend halten."

func articleHTML() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Politik | Beispiel</title></head><body>`)
	b.WriteString(`<nav><p>Startseite Politik Wirtschaft Kultur Sport Wetter Impressum</p></nav>`)
	b.WriteString(`<div class="cookie-consent"><p>Wir verwenden Cookies, um Ihnen das beste Erlebnis zu bieten.</p></div>`)
	b.WriteString(`<article><h1>Streit um das neue Maßnahmenpaket der Regierung</h1>`)
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "<p>%s (%d)</p>", paragraph, i)
	}
	b.WriteString(`<p>Zu kurz.</p></article>`)
	b.WriteString(`<aside><p>Das könnte Sie auch interessieren: weitere Artikel aus dem Ressort</p></aside>`)
	b.WriteString(`<footer><p>Alle Rechte vorbehalten, Beispiel-Zeitung Verlagsgesellschaft</p></footer>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

type fakeAI struct {
	answer string
	err    error
	calls  atomic.Int32
	prompt string
}

func (f *fakeAI) GenerateCompletion(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
	f.calls.Add(1)
	f.prompt = prompt
	return f.answer, f.err
}

func (f *fakeAI) GenerateCompletionWithFormat(context.Context, string, string, string, any, ...ai.GenerateOption) error {
	return errors.New("not used")
}

func (f *fakeAI) ResetMetrics()               {}
func (f *fakeAI) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "www.beispiel.de/a", want: "https://www.beispiel.de/a"},
		{in: "  http://beispiel.de ", want: "http://beispiel.de"},
		{in: "HTTPS://beispiel.de/x?y=1", want: "HTTPS://beispiel.de/x?y=1"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "ftp://beispiel.de", wantErr: true},
	}
	for _, tc := range tests {
		got, err := NormalizeURL(tc.in)
		if tc.wantErr {
			if analysis.CodeOf(err) != analysis.CodeURLMalformed {
				t.Fatalf("NormalizeURL(%q) error = %v, want URL_MALFORMED", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("NormalizeURL(%q) = %q, %v, want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	page, err := CleanHTML(articleHTML())
	if err != nil {
		t.Fatalf("CleanHTML() error = %v", err)
	}
	if page.Title != "Politik | Beispiel" {
		t.Fatalf("title = %q", page.Title)
	}
	if !strings.HasPrefix(page.Text, "Streit um das neue") {
		t.Fatalf("text should start with the headline: %q", page.Text[:40])
	}
	for _, junk := range []string{"Startseite", "Cookies", "interessieren", "Rechte", "Zu kurz."} {
		if strings.Contains(page.Text, junk) {
			t.Fatalf("text still contains %q", junk)
		}
	}
	if n := strings.Count(page.Text, "\n\n"); n != 6 {
		t.Fatalf("expected 7 blocks joined by blank lines, got %d separators", n)
	}
}

func TestCleanHTMLFallsBackToBody(t *testing.T) {
	html := `<html><body><div class="content">Ein kurzer Text ohne Absätze, aber mit Inhalt.</div>` +
		`<main><p>Nur ein einziger Absatz im Hauptbereich.</p></main></body></html>`
	page, err := CleanHTML(html)
	if err != nil {
		t.Fatalf("CleanHTML() error = %v", err)
	}
	if !strings.Contains(page.Text, "Ein kurzer Text ohne Absätze") || !strings.Contains(page.Text, "Hauptbereich") {
		t.Fatalf("short harvest should fall back to the body text, got %q", page.Text)
	}
}

func TestCleanHTMLTruncates(t *testing.T) {
	long := strings.Repeat("ä", MaxCandidateChars+100)
	page, err := CleanHTML("<html><body><p>" + long + "</p></body></html>")
	if err != nil {
		t.Fatalf("CleanHTML() error = %v", err)
	}
	if n := len([]rune(page.Text)); n != MaxCandidateChars {
		t.Fatalf("candidate has %d chars, want %d", n, MaxCandidateChars)
	}
}

func proxyTo(srv *httptest.Server, path string) Proxy {
	return Proxy{
		Name: path,
		URL: func(target string) string {
			return srv.URL + path + "?url=" + url.QueryEscape(target)
		},
	}
}

func TestFetchProxyChain(t *testing.T) {
	html := articleHTML()
	var (
		mu   sync.Mutex
		hits []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/down":
			w.WriteHeader(http.StatusBadGateway)
		case "/short":
			io.WriteString(w, "<html>zu kurz</html>")
		case "/emptyjson":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"status":{"http_code":200},"contents":""}`)
		case "/json":
			if r.URL.Query().Get("url") != "https://beispiel.de/a" {
				t.Errorf("proxy got target %q", r.URL.Query().Get("url"))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"data": html})
		case "/raw":
			io.WriteString(w, html)
		}
	}))
	defer srv.Close()

	e := NewExtractor(&fakeAI{}, WithProxies(
		proxyTo(srv, "/down"),
		proxyTo(srv, "/short"),
		proxyTo(srv, "/emptyjson"),
		proxyTo(srv, "/json"),
		proxyTo(srv, "/raw"),
	))

	got, err := e.Fetch(context.Background(), "https://beispiel.de/a")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != html {
		t.Fatalf("Fetch() returned the wrong body")
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(hits, ",") != "/down,/short,/emptyjson,/json" {
		t.Fatalf("proxy order = %v", hits)
	}
}

func TestFetchDecodesCharset(t *testing.T) {
	body := append([]byte("<html><body><p>"), []byte(strings.Repeat("Gr\xfc\xdfe aus M\xfcnchen. ", 20))...)
	body = append(body, []byte("</p></body></html>")...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write(body)
	}))
	defer srv.Close()

	e := NewExtractor(&fakeAI{}, WithProxies(proxyTo(srv, "/latin1")))
	got, err := e.Fetch(context.Background(), "https://beispiel.de")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(got, "Grüße aus München.") {
		t.Fatalf("body not decoded to UTF-8: %q", got[:60])
	}
}

func TestFetchAllProxiesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewExtractor(&fakeAI{}, WithProxies(proxyTo(srv, "/a"), proxyTo(srv, "/b")))
	_, err := e.Extract(context.Background(), "beispiel.de")
	if analysis.CodeOf(err) != analysis.CodeFetchUnavailable {
		t.Fatalf("Extract() error = %v, want FETCH_UNAVAILABLE", err)
	}
}

func TestFetchRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, articleHTML())
	}))
	defer srv.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()
	e := NewExtractor(&fakeAI{}, WithProxies(proxyTo(srv, "/raw")), WithRateLimit(limiter))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := e.Fetch(ctx, srv.URL); err == nil {
		t.Fatalf("Fetch() should fail while the limiter has no tokens")
	}
	if hits.Load() != 0 {
		t.Fatalf("proxy was called %d times despite the limit", hits.Load())
	}
}

func TestExtract(t *testing.T) {
	html := articleHTML()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		io.WriteString(w, html)
	}))
	defer srv.Close()

	answer := strings.Repeat(paragraph+" ", 3)
	model := &fakeAI{answer: "  " + answer + "\n"}
	store := cache.NewMemory(0)
	e := NewExtractor(model, WithProxies(proxyTo(srv, "/raw")), WithCache(store))

	got, err := e.Extract(context.Background(), "beispiel.de/artikel")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.URL != "https://beispiel.de/artikel" || got.Title != "Politik | Beispiel" || got.Text != strings.TrimSpace(answer) {
		t.Fatalf("Extract() = %+v", got)
	}
	if !strings.HasPrefix(model.prompt, "Extrahiere den Hauptartikel") || !strings.Contains(model.prompt, "---\nStreit um das neue") {
		t.Fatalf("prompt = %q", model.prompt[:80])
	}

	if _, err := e.Extract(context.Background(), "https://beispiel.de/artikel"); err != nil {
		t.Fatalf("second Extract() error = %v", err)
	}
	if requests.Load() != 1 || model.calls.Load() != 1 {
		t.Fatalf("repeat extraction refetched: %d fetches, %d model calls", requests.Load(), model.calls.Load())
	}

	fresh := NewExtractor(model, WithProxies(proxyTo(srv, "/raw")), WithCache(store))
	if _, err := fresh.Extract(context.Background(), "beispiel.de/artikel"); err != nil {
		t.Fatalf("cached Extract() error = %v", err)
	}
	if requests.Load() != 1 {
		t.Fatalf("persistent cache was not used")
	}
}

func TestExtractModelFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, articleHTML())
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		model *fakeAI
		want  analysis.Code
	}{
		{name: "short answer", model: &fakeAI{answer: "Zu kurz."}, want: analysis.CodeExtractionEmpty},
		{name: "empty answer", model: &fakeAI{err: ai.ErrEmptyResponse}, want: analysis.CodeExtractionEmpty},
		{name: "quota", model: &fakeAI{err: ai.ErrQuotaExceeded}, want: analysis.CodeLLMQuota},
		{name: "transport", model: &fakeAI{err: errors.New("connection reset")}, want: analysis.CodeLLMNoResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewExtractor(tc.model, WithProxies(proxyTo(srv, "/raw")))
			_, err := e.Extract(context.Background(), "beispiel.de")
			if got := analysis.CodeOf(err); got != tc.want {
				t.Fatalf("Extract() code = %s (%v), want %s", got, err, tc.want)
			}
		})
	}
}
