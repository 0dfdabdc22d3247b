package gateway

import (
	"context"
	"errors"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
	"github.com/criswit/moni-bridge/store"
)

// StatementCache is the cache-aside wrapper around a vendor's statement PDF
// endpoint. PDFs are opaque blobs keyed by team/user/account/statement; the
// fetch-then-store path is not atomic across processes, which is fine because
// writes are idempotent and last-write-wins.
type StatementCache struct {
	objects store.ObjectStore
	log     *logrus.Logger
}

// NewStatementCache wraps an object store.
func NewStatementCache(objects store.ObjectStore, log *logrus.Logger) *StatementCache {
	if log == nil {
		log = logrus.New()
	}
	return &StatementCache{objects: objects, log: log}
}

// CacheKey builds the deterministic object key for one statement.
func CacheKey(params provider.StatementPdfParams) string {
	return path.Join("statements", params.TeamID, params.UserID, params.AccountID, params.StatementID+".pdf")
}

// GetPdf checks the object store first and falls back to the vendor fetch,
// populating the cache on miss.
func (c *StatementCache) GetPdf(ctx context.Context, params provider.StatementPdfParams, fetch func(ctx context.Context) (*model.StatementPdf, error)) (*model.StatementPdf, error) {
	key := CacheKey(params)

	data, err := c.objects.Get(ctx, key)
	if err == nil {
		return &model.StatementPdf{Data: data, Filename: params.StatementID + ".pdf"}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		// A flaky cache never blocks the vendor path.
		c.log.WithError(err).WithField("key", key).Warn("statement cache read failed")
	}

	pdf, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if putErr := c.objects.Put(ctx, key, pdf.Data, "application/pdf"); putErr != nil {
		c.log.WithError(putErr).WithField("key", key).Warn("statement cache write failed")
	}
	return pdf, nil
}
