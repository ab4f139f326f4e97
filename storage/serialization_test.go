package storage

import (
	"testing"
	"time"

	"github.com/poiesic/relsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.CacheKey("fa", "python")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalCachedSuggestions(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		entry *core.CachedSuggestions
	}{
		{
			name: "full entry",
			entry: &core.CachedSuggestions{
				Query:       "python",
				Locale:      "fa",
				Suggestions: []string{"python tutorial", "python jobs"},
				FetchedAt:   now,
			},
		},
		{
			name: "no suggestions",
			entry: &core.CachedSuggestions{
				Query:       "zzqx",
				Locale:      "en",
				Suggestions: []string{},
				FetchedAt:   now,
			},
		},
		{
			name: "persian suggestions",
			entry: &core.CachedSuggestions{
				Query:       "آموزش+پایتون",
				Locale:      "fa",
				Suggestions: []string{"آموزش پایتون مقدماتی"},
				FetchedAt:   now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalCachedSuggestions(MarshalCachedSuggestions(tt.entry))
			require.NoError(t, err)
			assert.Equal(t, tt.entry.Query, decoded.Query)
			assert.Equal(t, tt.entry.Locale, decoded.Locale)
			assert.Len(t, decoded.Suggestions, len(tt.entry.Suggestions))
			for i := range tt.entry.Suggestions {
				assert.Equal(t, tt.entry.Suggestions[i], decoded.Suggestions[i])
			}
			assert.True(t, tt.entry.FetchedAt.Equal(decoded.FetchedAt))
		})
	}
}

func TestUnmarshalCachedSuggestions_Truncated(t *testing.T) {
	data := MarshalCachedSuggestions(&core.CachedSuggestions{
		Query:       "python",
		Locale:      "fa",
		Suggestions: []string{"python tutorial"},
		FetchedAt:   time.Now(),
	})

	_, err := UnmarshalCachedSuggestions(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
