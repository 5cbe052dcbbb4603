package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/webhost/security"
	"github.com/kbukum/webhost/security/tlstest"
)

func decodeLine(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(b), &m); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, b)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: "json", Output: "stdout"}
	if l := New(cfg, "test"); l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithComponentPreservesService(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("handler")
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestTitlePrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{TitlePrefixes: []string{"payments", " ", "api"}})
	l.Info("started")

	got := decodeLine(t, buf.Bytes())
	if got["message"] != "[payments][api] started" {
		t.Errorf("unexpected message %q", got["message"])
	}
}

func TestBlacklistRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{Blacklist: []string{"Password", "token"}})
	l.Info("login", map[string]interface{}{
		"user":     "ada",
		"password": "hunter2",
		"nested":   map[string]interface{}{"Token": "abc", "ok": 1},
	})

	got := decodeLine(t, buf.Bytes())
	if got["password"] != Masked {
		t.Errorf("password not masked: %v", got["password"])
	}
	if got["user"] != "ada" {
		t.Errorf("user should pass through, got %v", got["user"])
	}
	nested := got["nested"].(map[string]interface{})
	if nested["Token"] != Masked {
		t.Errorf("nested token not masked: %v", nested["Token"])
	}
}

func TestWithFieldsRedacts(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{Blacklist: []string{"secret"}}).
		WithFields(map[string]interface{}{"secret": "x"})
	l.Info("hello")

	if got := decodeLine(t, buf.Bytes()); got["secret"] != Masked {
		t.Errorf("expected masked secret, got %v", got["secret"])
	}
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCulture(ctx, "fr-fr")
	NewWithWriter(&buf, Config{}).WithContext(ctx).Info("x")

	got := decodeLine(t, buf.Bytes())
	if got[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id, got %v", got[FieldRequestID])
	}
	if got[FieldCulture] != "fr-fr" {
		t.Errorf("expected culture, got %v", got[FieldCulture])
	}
}

func TestSetGlobalLoggerReplaces(t *testing.T) {
	prev := globalLogger.Load()
	defer globalLogger.Store(prev)

	first := NewDefault("one")
	second := NewDefault("two")
	SetGlobalLogger(first)
	SetGlobalLogger(second)
	if GetGlobalLogger() != second {
		t.Error("expected the second logger to replace the first")
	}
}

func TestGlobalLoggerConcurrentAccess(t *testing.T) {
	prev := globalLogger.Load()
	defer globalLogger.Store(prev)
	globalLogger.Store(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobalLogger(NewWithWriter(io.Discard, Config{}))
		}()
		go func() {
			defer wg.Done()
			if GetGlobalLogger() == nil {
				t.Error("global logger is nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Seq.BatchSize != 100 || cfg.Splunk.SourceType != "_json" {
		t.Errorf("unexpected sink defaults: %+v %+v", cfg.Seq, cfg.Splunk)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp on")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Level: "info", Format: "json"}, ""},
		{"bad level", Config{Level: "loud", Format: "json"}, "logging.level"},
		{"bad format", Config{Level: "info", Format: "xml"}, "logging.format"},
		{"splunk without token", Config{Level: "info", Format: "json", Splunk: SplunkConfig{URL: "http://s"}}, "splunk.token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// captureSink records lines written by the logger.
type captureSink struct {
	mu    sync.Mutex
	lines [][]byte
}

func (c *captureSink) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := append([]byte(nil), p...)
	c.lines = append(c.lines, cp)
	return len(p), nil
}
func (c *captureSink) Name() string                    { return "capture" }
func (c *captureSink) Start(ctx context.Context) error { return nil }
func (c *captureSink) Stop(ctx context.Context) error  { return nil }
func (c *captureSink) Flush(ctx context.Context) error { return nil }

func TestBuilderTagsDomainAndApplication(t *testing.T) {
	sink := &captureSink{}
	l, sinks, err := NewBuilder(Config{Format: "json", Output: "stderr"}).
		WithDomain("billing").
		WithApplication("billing-api").
		WithSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("expected 1 sink, got %d", len(sinks))
	}

	l.Info("ready")
	if len(sink.lines) != 1 {
		t.Fatalf("expected 1 captured line, got %d", len(sink.lines))
	}
	got := decodeLine(t, sink.lines[0])
	if got[FieldDomain] != "billing" || got[FieldApplication] != "billing-api" {
		t.Errorf("missing tags: %v", got)
	}
}

func TestBuilderAddsConfiguredSinks(t *testing.T) {
	_, sinks, err := NewBuilder(Config{Format: "json"}).
		WithApplication("app").
		WithSeq(SeqConfig{URL: "http://seq:5341"}).
		WithSplunk(SplunkConfig{URL: "http://splunk:8088", Token: "t"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	names := []string{}
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	if strings.Join(names, ",") != "seq,splunk" {
		t.Errorf("unexpected sinks %v", names)
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	_, _, err := NewBuilder(Config{Level: "nope"}).Build()
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEncodeCLEF(t *testing.T) {
	body, err := encodeCLEF([][]byte{
		[]byte(`{"level":"warn","time":"2024-01-02T03:04:05Z","message":"disk low","free":3}`),
		[]byte(`not json`),
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 event, got %d", len(lines))
	}
	got := decodeLine(t, []byte(lines[0]))
	if got["@l"] != "Warning" || got["@m"] != "disk low" || got["@t"] != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected CLEF event: %v", got)
	}
	if _, ok := got["level"]; ok {
		t.Error("level should have been renamed")
	}
}

func TestEncodeHEC(t *testing.T) {
	body, err := encodeHEC([][]byte{[]byte(`{"time":"2024-01-02T03:04:05Z","message":"m"}`)}, "api", "_json", "main")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got := decodeLine(t, body)
	if got["source"] != "api" || got["index"] != "main" || got["sourcetype"] != "_json" {
		t.Errorf("unexpected HEC envelope: %v", got)
	}
	want := float64(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix())
	if got["time"] != want {
		t.Errorf("expected time %v, got %v", want, got["time"])
	}
}

func TestSeqSinkFlush(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
		apiKey string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		apiKey = r.Header.Get("X-Seq-ApiKey")
		path = r.URL.RequestURI()
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sink := NewSeqSink(SeqConfig{URL: srv.URL + "/", APIKey: "k", BatchSize: 10}, srv.Client())
	_, _ = sink.Write([]byte(`{"level":"info","message":"a"}` + "\n"))
	_, _ = sink.Write([]byte(`{"level":"info","message":"b"}` + "\n"))

	if err := sink.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected one batch, got %d", len(bodies))
	}
	if strings.Count(bodies[0], "\n") != 2 {
		t.Errorf("expected two CLEF lines, got %q", bodies[0])
	}
	if apiKey != "k" {
		t.Errorf("expected api key header, got %q", apiKey)
	}
	if path != "/api/events/raw?clef" {
		t.Errorf("unexpected path %q", path)
	}
}

func TestSinkStopFlushesPending(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if r.Header.Get("Authorization") != "Splunk tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		received <- string(b)
	}))
	defer srv.Close()

	sink := NewSplunkSink(SplunkConfig{URL: srv.URL, Token: "tok", FlushInterval: time.Hour}, "api", srv.Client())
	if err := sink.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_, _ = sink.Write([]byte(`{"message":"bye"}`))
	if err := sink.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case body := <-received:
		if !strings.Contains(body, `"bye"`) {
			t.Errorf("unexpected body %q", body)
		}
	default:
		t.Fatal("expected pending event to be flushed on stop")
	}
}

func TestSinkFlushReportsRejectedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewSeqSink(SeqConfig{URL: srv.URL}, srv.Client())
	_, _ = sink.Write([]byte(`{"message":"x"}`))
	err := sink.Flush(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unexpected status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("rejected batch should be dropped, got %v", err)
	}
}

func TestSinkFlushRetries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   bool
	}{
		{"transient failure recovers", []int{http.StatusServiceUnavailable, http.StatusCreated}, 2, false},
		{"throttled then accepted", []int{http.StatusTooManyRequests, http.StatusCreated}, 2, false},
		{"client error is not retried", []int{http.StatusBadRequest, http.StatusCreated}, 1, true},
		{"server error exhausts attempts", []int{500, 500, 500, 201}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer srv.Close()

			sink := NewSeqSink(SeqConfig{URL: srv.URL, MaxAttempts: 3}, srv.Client())
			_, _ = sink.Write([]byte(`{"message":"x"}`))
			err := sink.Flush(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Flush = %v, wantErr %v", err, tt.wantErr)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("deliveries = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestSinkBufferIsBounded(t *testing.T) {
	var healthy atomic.Bool
	var mu sync.Mutex
	var sizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		sizes = append(sizes, bytes.Count(body, []byte("\n")))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sink := NewSeqSink(SeqConfig{URL: srv.URL, BatchSize: 10, MaxAttempts: 1}, srv.Client()).(*httpSink)
	for i := 0; i < 1000; i++ {
		_, _ = fmt.Fprintf(sink, `{"message":"line %d"}`+"\n", i)
	}
	if got := sink.Buffered(); got != 100 {
		t.Fatalf("buffered = %d, want 100", got)
	}
	if got := sink.Dropped(); got != 900 {
		t.Errorf("dropped = %d, want 900", got)
	}

	if err := sink.Flush(context.Background()); err == nil {
		t.Fatal("expected flush against failing collector to error")
	}
	if got := sink.Buffered(); got != 90 {
		t.Errorf("buffered after failed batch = %d, want 90", got)
	}

	healthy.Store(true)
	if err := sink.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(sizes) != 9 {
		t.Fatalf("requests = %d, want 9", len(sizes))
	}
	for i, n := range sizes {
		if n != 10 {
			t.Errorf("request %d carried %d lines, want 10", i, n)
		}
	}
	if got := sink.Buffered(); got != 0 {
		t.Errorf("buffered after flush = %d, want 0", got)
	}
}

func TestBuilderSinkTLS(t *testing.T) {
	ca := tlstest.NewAuthority(t)
	var got atomic.Int32
	srv := ca.Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Add(1)
		w.WriteHeader(http.StatusCreated)
	}), false)

	cfg := Config{
		Level:   "info",
		Format:  "json",
		Output:  "stderr",
		Seq:     SeqConfig{URL: srv.URL},
		SinkTLS: security.TLSConfig{CAFile: ca.CAFile},
	}
	log, sinks, err := NewBuilder(cfg).WithApplication("api").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("sinks = %d, want 1", len(sinks))
	}
	log.Info("over tls")
	if err := sinks[0].Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got.Load() != 1 {
		t.Errorf("collector received %d batches, want 1", got.Load())
	}

	cfg.SinkTLS = security.TLSConfig{CAFile: "/nonexistent/ca.pem"}
	if _, _, err := NewBuilder(cfg).Build(); err == nil {
		t.Error("expected unreadable CA to fail Build")
	}
}

func TestNamedLoggers(t *testing.T) {
	l := NewDefault("named")
	Register("comm-test", l)
	defer Register("comm-test", nil)

	if Get("comm-test") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered-test") == nil {
		t.Error("expected fallback logger for unknown name")
	}
	found := false
	for _, n := range Names() {
		if n == "comm-test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Names() = %v, want comm-test listed", Names())
	}

	Register("comm-test", nil)
	if Get("comm-test") == l {
		t.Error("expected nil registration to remove the logger")
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		got  map[string]interface{}
		want map[string]interface{}
	}{
		{"pairs", Fields("op", "save", "id", 42), map[string]interface{}{"op": "save", "id": 42}},
		{"dangling key", Fields("op", "save", "dangling"), map[string]interface{}{"op": "save", "dangling": nil}},
		{"non-string key", Fields(7, "x", "ok", true), map[string]interface{}{"ok": true}},
		{"error", ErrorFields("load", errors.New("boom")), map[string]interface{}{FieldOperation: "load", FieldError: "boom"}},
		{"nil error", ErrorFields("load", nil), map[string]interface{}{FieldOperation: "load"}},
		{"phase", PhaseFields("container", 1500*time.Millisecond), map[string]interface{}{FieldPhase: "container", FieldDuration: int64(1500)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != len(tt.want) {
				t.Fatalf("got %v, want %v", tt.got, tt.want)
			}
			for k, v := range tt.want {
				if got, ok := tt.got[k]; !ok || got != v {
					t.Errorf("%s = %v, want %v", k, got, v)
				}
			}
		})
	}
}
