package middleware

import (
	"bufio"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// commitWriter runs onCommit exactly once, immediately before the first
// byte or the status line reaches the client.
type commitWriter struct {
	gin.ResponseWriter
	owner    *Pipelines
	once     sync.Once
	onCommit func()
}

func newCommitWriter(w gin.ResponseWriter, owner *Pipelines, onCommit func()) *commitWriter {
	return &commitWriter{ResponseWriter: w, owner: owner, onCommit: onCommit}
}

func (w *commitWriter) commit() {
	w.once.Do(w.onCommit)
}

func (w *commitWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

// Flush implements http.Flusher, required for streaming responses.
func (w *commitWriter) Flush() {
	w.commit()
	w.ResponseWriter.Flush()
}

func (w *commitWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.commit()
	return w.ResponseWriter.Hijack()
}

// Unwrap returns the underlying ResponseWriter so http.ResponseController
// can discover optional interfaces on the original writer.
func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
