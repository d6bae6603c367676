package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/DervishD/sacamantecas"
)

// Ensure LoggingRetriever implements sacamantecas.Retriever.
var _ sacamantecas.Retriever = (*LoggingRetriever)(nil)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   sacamantecas.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next sacamantecas.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Retrieve delegates to the wrapped retriever and logs the operation.
func (r *LoggingRetriever) Retrieve(ctx context.Context, uri string) (doc *sacamantecas.Document, err error) {
	defer func(begin time.Time) {
		var size int
		var charset string
		if doc != nil {
			size = len(doc.Content)
			charset = doc.Charset
		}
		r.logger.Info("retrieve",
			"uri", uri,
			"bytes", size,
			"charset", charset,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Retrieve(ctx, uri)
}

// Close delegates to the wrapped retriever.
func (r *LoggingRetriever) Close() error {
	return r.next.Close()
}
