package generate

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/store"
	"github.com/sharppicks/parlay-engine/pkg/anthropic"
	"github.com/sharppicks/parlay-engine/pkg/oddsapi"
)

// scriptedAI replays canned responses (or errors) in order, recording every
// prompt it receives. When respond is set it picks the reply per prompt
// instead, which the concurrent daily tests need.
type scriptedAI struct {
	mu      sync.Mutex
	replies []any // string (response text) or error
	respond func(prompt string) any
	prompts []string
	calls   int
}

func (s *scriptedAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prompt string
	if len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
		s.prompts = append(s.prompts, prompt)
	}
	idx := s.calls
	s.calls++

	var reply any
	if s.respond != nil {
		reply = s.respond(prompt)
	} else {
		if idx >= len(s.replies) {
			return nil, eris.New("scriptedAI: no more replies")
		}
		reply = s.replies[idx]
	}
	switch v := reply.(type) {
	case error:
		return nil, v
	case string:
		return &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: v}},
		}, nil
	default:
		return nil, eris.New("scriptedAI: bad reply type")
	}
}

// memStore is an in-memory Store capturing created parlays.
type memStore struct {
	created []*model.Parlay
	daily   map[string][]model.Parlay
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{daily: make(map[string][]model.Parlay)}
}

func (m *memStore) CreateParlay(ctx context.Context, p *model.Parlay) error {
	if p.ID == "" {
		p.ID = "parlay-" + string(rune('a'+len(m.created)))
	}
	for i := range p.Legs {
		p.Legs[i].ParlayID = p.ID
	}
	m.created = append(m.created, p)
	if p.IsDaily {
		m.daily[p.DailyDate] = append(m.daily[p.DailyDate], *p)
	}
	return nil
}

func (m *memStore) GetParlay(ctx context.Context, id string) (*model.Parlay, error) {
	for _, p := range m.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, eris.Errorf("parlay not found: %s", id)
}

func (m *memStore) ListParlays(ctx context.Context, filter store.ParlayFilter) ([]model.Parlay, error) {
	if filter.DailyDate != "" {
		return m.daily[filter.DailyDate], nil
	}
	var out []model.Parlay
	for _, p := range m.created {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) UpdateParlayResult(ctx context.Context, id string, result model.ParlayResult) error {
	return nil
}

func (m *memStore) ListPendingLegs(ctx context.Context, before time.Time) ([]model.Leg, error) {
	return nil, nil
}

func (m *memStore) UpdateLegResult(ctx context.Context, legID string, result model.LegResult) error {
	return nil
}

func (m *memStore) DailyExists(ctx context.Context, date string) (bool, error) {
	return len(m.daily[date]) > 0, nil
}

func (m *memStore) DeleteDaily(ctx context.Context, date string) error {
	m.deleted = append(m.deleted, date)
	delete(m.daily, date)
	return nil
}

func (m *memStore) Migrate(ctx context.Context) error { return nil }
func (m *memStore) Close() error                      { return nil }

// fakeOdds serves a fixed dataset for every fetch.
type fakeOdds struct {
	games   []model.Game
	err     error
	fetches int
	markets [][]string
}

func (f *fakeOdds) FetchOdds(ctx context.Context, req oddsapi.OddsRequest) ([]model.Game, error) {
	f.fetches++
	f.markets = append(f.markets, req.Markets)
	return f.games, f.err
}

func (f *fakeOdds) FetchScores(ctx context.Context, sportKey string, daysFrom int) ([]model.CompletedGame, error) {
	return nil, nil
}

type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }
