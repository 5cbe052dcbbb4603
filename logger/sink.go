package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/webhost/resilience"
)

// Sink is a batching log destination. It receives zerolog JSON lines through
// Write and ships them on Flush, on a timer once started, and on Stop.
type Sink interface {
	io.Writer
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Flush(ctx context.Context) error
}

// encodeFunc turns a batch of JSON log lines into a request body.
type encodeFunc func(lines [][]byte) ([]byte, error)

// defaultSinkTimeout bounds one delivery request.
const defaultSinkTimeout = 10 * time.Second

// bufferedBatches is how many batches a sink holds before it drops the
// oldest lines.
const bufferedBatches = 10

// statusError is a delivery rejected by the collector.
type statusError struct {
	sink string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s sink: unexpected status %d", e.sink, e.code)
}

// retryable reports whether a failed delivery is worth repeating. Client
// errors other than throttling will fail the same way again.
func retryable(err error) bool {
	if !resilience.DefaultRetryIf(err) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

type httpSink struct {
	name        string
	url         string
	contentType string
	headers     map[string]string
	encode      encodeFunc
	client      *http.Client
	batchSize   int
	interval    time.Duration
	retry       resilience.RetryConfig

	mu      sync.Mutex
	pending [][]byte
	dropped uint64
	kick    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
	lastErr error
}

func newHTTPSink(name, url, contentType string, headers map[string]string, batchSize int, interval time.Duration, attempts int, client *http.Client, enc encodeFunc) *httpSink {
	if client == nil {
		client = &http.Client{Timeout: defaultSinkTimeout}
	}
	retry := resilience.DefaultRetryConfig()
	if attempts > 0 {
		retry.MaxAttempts = attempts
	}
	retry.RetryIf = retryable
	if batchSize <= 0 {
		batchSize = 100
	}
	return &httpSink{
		name:        name,
		url:         url,
		contentType: contentType,
		headers:     headers,
		encode:      enc,
		client:      client,
		batchSize:   batchSize,
		interval:    interval,
		retry:       retry,
		kick:        make(chan struct{}, 1),
	}
}

func (s *httpSink) Name() string { return s.name }

// Write buffers one log line. zerolog reuses p, so it is copied.
func (s *httpSink) Write(p []byte) (int, error) {
	line := bytes.TrimSpace(p)
	if len(line) == 0 {
		return len(p), nil
	}
	cp := make([]byte, len(line))
	copy(cp, line)

	s.mu.Lock()
	if len(s.pending) >= s.batchSize*bufferedBatches {
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.dropped++
	}
	s.pending = append(s.pending, cp)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

func (s *httpSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.loop()
	return nil
}

func (s *httpSink) loop() {
	defer s.wg.Done()
	interval := s.interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		case <-s.kick:
		}
		budget := time.Duration(s.retry.MaxAttempts) * (s.client.Timeout + time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		err := s.Flush(ctx)
		cancel()
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}
}

// Stop ends the flush loop and ships whatever is still buffered.
func (s *httpSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		close(s.done)
		s.running = false
	}
	s.mu.Unlock()
	s.wg.Wait()
	return s.Flush(ctx)
}

// Flush ships the lines buffered at call time in requests of at most
// batchSize lines, retrying transient failures with backoff. A batch is
// dropped once delivery gives up and the remaining lines stay buffered.
func (s *httpSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	remaining := len(s.pending)
	s.mu.Unlock()

	for remaining > 0 {
		s.mu.Lock()
		n := min(s.batchSize, remaining, len(s.pending))
		if n == 0 {
			s.mu.Unlock()
			return nil
		}
		batch := s.pending[:n:n]
		s.pending = s.pending[n:]
		s.mu.Unlock()
		remaining -= n

		if err := s.send(ctx, batch); err != nil {
			s.mu.Lock()
			s.dropped += uint64(len(batch))
			s.mu.Unlock()
			return err
		}
	}
	return nil
}

func (s *httpSink) send(ctx context.Context, batch [][]byte) error {
	body, err := s.encode(batch)
	if err != nil {
		return fmt.Errorf("%s sink: encode batch: %w", s.name, err)
	}
	return resilience.RetryFunc(ctx, s.retry, func() error {
		return s.post(ctx, body)
	})
}

func (s *httpSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s sink: build request: %w", s.name, err)
	}
	req.Header.Set("Content-Type", s.contentType)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s sink: post: %w", s.name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return &statusError{sink: s.name, code: resp.StatusCode}
	}
	return nil
}

// LastError returns the error of the most recent background flush.
func (s *httpSink) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Dropped counts lines lost to a full buffer or a failed delivery.
func (s *httpSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Buffered counts lines waiting for delivery.
func (s *httpSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// --- Seq ---

var seqLevels = map[string]string{
	"trace": "Verbose",
	"debug": "Debug",
	"info":  "Information",
	"warn":  "Warning",
	"error": "Error",
	"fatal": "Fatal",
	"panic": "Fatal",
}

// NewSeqSink returns a sink posting compact log event format (CLEF) batches
// to the Seq raw ingestion endpoint.
func NewSeqSink(cfg SeqConfig, client *http.Client) Sink {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["X-Seq-ApiKey"] = cfg.APIKey
	}
	url := strings.TrimRight(cfg.URL, "/") + "/api/events/raw?clef"
	return newHTTPSink("seq", url, "application/vnd.serilog.clef", headers,
		cfg.BatchSize, cfg.FlushInterval, cfg.MaxAttempts, client, encodeCLEF)
}

func encodeCLEF(lines [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, line := range lines {
		var event map[string]interface{}
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		renameKey(event, "time", "@t")
		renameKey(event, "message", "@m")
		if lvl, ok := event["level"].(string); ok {
			delete(event, "level")
			if mapped, ok := seqLevels[lvl]; ok {
				event["@l"] = mapped
			}
		}
		if _, ok := event["@t"]; !ok {
			event["@t"] = time.Now().UTC().Format(time.RFC3339Nano)
		}
		out, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		buf.Write(out)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// --- Splunk ---

// NewSplunkSink returns a sink posting batches to a Splunk HTTP Event Collector.
func NewSplunkSink(cfg SplunkConfig, source string, client *http.Client) Sink {
	headers := map[string]string{"Authorization": "Splunk " + cfg.Token}
	url := strings.TrimRight(cfg.URL, "/") + "/services/collector/event"
	enc := func(lines [][]byte) ([]byte, error) {
		return encodeHEC(lines, source, cfg.SourceType, cfg.Index)
	}
	return newHTTPSink("splunk", url, "application/json", headers,
		cfg.BatchSize, cfg.FlushInterval, cfg.MaxAttempts, client, enc)
}

type hecEvent struct {
	Time       float64                `json:"time"`
	Source     string                 `json:"source,omitempty"`
	SourceType string                 `json:"sourcetype,omitempty"`
	Index      string                 `json:"index,omitempty"`
	Event      map[string]interface{} `json:"event"`
}

func encodeHEC(lines [][]byte, source, sourceType, index string) ([]byte, error) {
	var buf bytes.Buffer
	for _, line := range lines {
		var event map[string]interface{}
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		ts := time.Now()
		if raw, ok := event["time"].(string); ok {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				ts = parsed
			}
		}
		out, err := json.Marshal(hecEvent{
			Time:       float64(ts.UnixNano()) / float64(time.Second),
			Source:     source,
			SourceType: sourceType,
			Index:      index,
			Event:      event,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(out)
	}
	return buf.Bytes(), nil
}

func renameKey(m map[string]interface{}, from, to string) {
	if v, ok := m[from]; ok {
		delete(m, from)
		m[to] = v
	}
}
