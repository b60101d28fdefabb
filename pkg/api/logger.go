package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// requestLogger sends chi's access log through logrus so it lands wherever
// InitLog pointed the process log
type requestLogger struct {
	logger log.FieldLogger
}

func (l requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestEntry{
		entry: l.logger.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
			"request_id": middleware.GetReqID(r.Context()),
		}),
	}
}

type requestEntry struct {
	entry *log.Entry
}

func (e *requestEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	e.entry.WithFields(log.Fields{
		"status":  status,
		"bytes":   bytes,
		"elapsed": elapsed,
	}).Info("Request")
}

func (e *requestEntry) Panic(v interface{}, stack []byte) {
	e.entry.WithField("panic", v).Error(string(stack))
}
