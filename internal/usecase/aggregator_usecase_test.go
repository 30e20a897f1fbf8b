package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/aura-service/internal/entity"
)

func TestDominantColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		colors []entity.Color
		want   entity.Color
		ok     bool
	}{
		{"mode", []entity.Color{entity.ColorGreen, entity.ColorGreen, entity.ColorYellow}, entity.ColorGreen, true},
		{"tie is lexicographic", []entity.Color{entity.ColorYellow, entity.ColorRed, entity.ColorGreen}, entity.ColorGreen, true},
		{"blank colors ignored", []entity.Color{"", "", entity.ColorGrey}, entity.ColorGrey, true},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DominantColor(tt.colors)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func seedPage(t *testing.T, s *fakeStore, path string, color entity.Color) *entity.SavedPage {
	t.Helper()
	saved, err := s.SaveCrawl(context.Background(), &entity.CrawlRecord{
		Domain:         "example.com",
		PathKey:        path,
		Aura:           entity.PageAura{Circle: entity.Circle{Color: color}},
		ScoringVersion: 2,
		ScrapedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return saved
}

func TestAggregateWritesMode(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedPage(t, store, "/a", entity.ColorGreen)
	seedPage(t, store, "/b", entity.ColorGreen)
	saved := seedPage(t, store, "/c", entity.ColorYellow)

	circle, err := NewAggregator(store, zap.NewNop()).Aggregate(context.Background(), saved.DomainID)
	require.NoError(t, err)
	require.NotNil(t, circle)

	want := entity.Circle{Color: entity.ColorGreen, Intent: "Aggregated from 3 pages"}
	assert.Equal(t, want, *circle)
	assert.Equal(t, &want, store.domain("example.com").OverallAura)
}

func TestAggregateEmptyDomainIsNoop(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	saved := seedPage(t, store, "/a", entity.ColorRed)
	previous := entity.Circle{Color: entity.ColorRed, Intent: "Aggregated from 1 pages"}
	require.NoError(t, store.UpdateDomainAura(context.Background(), saved.DomainID, previous))
	require.NoError(t, store.DeletePage(context.Background(), entity.PageRef{Domain: "example.com", PathKey: "/a"}))

	circle, err := NewAggregator(store, zap.NewNop()).Aggregate(context.Background(), saved.DomainID)
	require.NoError(t, err)
	assert.Nil(t, circle)
	assert.Equal(t, &previous, store.domain("example.com").OverallAura)
}
