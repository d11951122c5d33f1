package search

import (
	"context"
	"fmt"
	"strings"
)

type Kind int

const (
	Video Kind = iota
	Music
)

func (k Kind) String() string {
	if k == Music {
		return "music"
	}
	return "video"
}

type Item struct {
	Title    string
	Artist   string
	URL      string
	Duration int
	Views    int64
}

// Error is a failed search. An empty result is not an error.
type Error struct {
	Kind  Kind
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s search %q: %v", e.Kind, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Item, error)
}

type Service struct {
	providers map[Kind]Provider
}

func NewService(video, music Provider) *Service {
	return &Service{providers: map[Kind]Provider{Video: video, Music: music}}
}

func (s *Service) Search(ctx context.Context, query string, kind Kind, limit int) ([]Item, error) {
	query = strings.TrimSpace(query)
	p, ok := s.providers[kind]
	if !ok || p == nil {
		return nil, &Error{Kind: kind, Query: query, Err: fmt.Errorf("no %s provider configured", kind)}
	}

	items, err := p.Search(ctx, query, limit)
	if err != nil {
		return nil, &Error{Kind: kind, Query: query, Err: err}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
