// Package view runs the normalization pipeline over pages read from the
// record store: normalize, then bucket or search.
package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/matheus3301/wppview/internal/bucket"
	"github.com/matheus3301/wppview/internal/message"
	"github.com/matheus3301/wppview/internal/search"
	"github.com/matheus3301/wppview/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Source yields pages of stored records, newest first.
type Source interface {
	ListRecords(chatJID string, before store.Cursor, limit int) ([]store.Record, error)
}

// Clock returns the current time. It is read once per request.
type Clock func() time.Time

// Options configures the pipeline stages.
type Options struct {
	Placeholder string
	Labels      bucket.Labels
	Marker      search.Marker
	Location    *time.Location
	PageSize    int
}

// Service serves normalized, bucketed and searched pages of a chat.
type Service struct {
	source     Source
	clock      Clock
	normalizer message.Normalizer
	bucketer   bucket.Bucketer
	engine     search.Engine
	pageSize   int
	logger     *zap.Logger
}

// NewService creates a Service. A nil clock uses time.Now and a nil
// logger discards output.
func NewService(source Source, clock Clock, opts Options, logger *zap.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	return &Service{
		source:     source,
		clock:      clock,
		normalizer: message.NewNormalizer(opts.Placeholder),
		bucketer:   bucket.New(opts.Location, opts.Labels),
		engine:     search.New(opts.Marker),
		pageSize:   opts.PageSize,
		logger:     logger,
	}
}

// Page reads the page of a chat older than before and returns it
// normalized, oldest first, with the cursor for the page after it. The
// cursor is zero when the page is empty.
func (s *Service) Page(chatJID string, before store.Cursor, limit int) ([]message.Message, store.Cursor, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	recs, err := s.source.ListRecords(chatJID, before, limit)
	if err != nil {
		return nil, store.Cursor{}, fmt.Errorf("list records: %w", err)
	}
	var next store.Cursor
	if len(recs) > 0 {
		next = recs[len(recs)-1].Cursor()
	}
	msgs := s.normalizer.NormalizeAll(store.RawRecords(recs))
	// The store pages newest first; display order is chronological.
	slices.Reverse(msgs)

	malformed := lo.CountBy(msgs, func(m message.Message) bool { return !m.WellFormed })
	if malformed > 0 {
		s.logger.Debug("page has unreadable content",
			zap.String("chat", chatJID),
			zap.Int("messages", len(msgs)),
			zap.Int("unreadable", malformed))
	}
	return msgs, next, nil
}

// Buckets returns a page grouped under relative date labels, with the
// cursor of the page before it.
func (s *Service) Buckets(chatJID string, before store.Cursor, limit int) ([]bucket.Bucket, store.Cursor, error) {
	msgs, next, err := s.Page(chatJID, before, limit)
	if err != nil {
		return nil, store.Cursor{}, err
	}
	buckets, err := s.bucketer.Group(s.clock(), msgs)
	if err != nil {
		return nil, store.Cursor{}, err
	}
	return buckets, next, nil
}

// Search returns the messages of the latest page matching query, highlighted.
func (s *Service) Search(chatJID, query string, limit int) ([]search.Hit, error) {
	msgs, _, err := s.Page(chatJID, store.Cursor{}, limit)
	if err != nil {
		return nil, err
	}
	return s.engine.Search(msgs, query), nil
}

// LabeledHit is a search hit tagged with its date bucket label.
type LabeledHit struct {
	Label string
	search.Hit
}

// SearchLabeled is Search with each hit labeled relative to one clock read.
func (s *Service) SearchLabeled(chatJID, query string, limit int) ([]LabeledHit, error) {
	hits, err := s.Search(chatJID, query, limit)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]LabeledHit, len(hits))
	for i, h := range hits {
		label, err := s.bucketer.Label(now, h.Message.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("message %q: %w", h.Message.ID, err)
		}
		out[i] = LabeledHit{Label: label, Hit: h}
	}
	return out, nil
}

// Engine returns the configured search engine.
func (s *Service) Engine() search.Engine {
	return s.engine
}
