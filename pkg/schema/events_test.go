package schema

import (
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterToggledV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = FilterToggledV1Avro()
	})

	in := FilterToggledV1{
		ViewID:     "view-1",
		Dimension:  "category",
		Value:      "millets",
		Selected:   true,
		OccurredAt: time.UnixMilli(1_700_000_000_123).UTC(),
	}
	data, err := avro.Marshal(s, in)
	require.NoError(t, err)

	var out FilterToggledV1
	require.NoError(t, avro.Unmarshal(s, data, &out))
	assert.Equal(t, in.ViewID, out.ViewID)
	assert.Equal(t, in.Dimension, out.Dimension)
	assert.Equal(t, in.Value, out.Value)
	assert.True(t, out.Selected)
	assert.True(t, in.OccurredAt.Equal(out.OccurredAt))
}

func TestSearchPerformedV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = SearchPerformedV1Avro()
	})

	in := SearchPerformedV1{
		ViewID:      "view-1",
		Language:    "TE",
		Query:       "రాగి",
		ResultCount: 2,
		OccurredAt:  time.UnixMilli(1_700_000_000_000).UTC(),
	}
	data, err := avro.Marshal(s, in)
	require.NoError(t, err)

	var out SearchPerformedV1
	require.NoError(t, avro.Unmarshal(s, data, &out))
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, in.Language, out.Language)
	assert.Equal(t, in.ResultCount, out.ResultCount)
	assert.True(t, in.OccurredAt.Equal(out.OccurredAt))
}
