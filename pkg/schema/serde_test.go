package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/millet-catalog/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeFilterToggledV1(t *testing.T) {
	const subject = "filter_selections-value"

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeFilterToggledV1(t.Context())
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeFilterToggledV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("InvalidOpt", func(t *testing.T) {
		_, err := schema.NewSerdeFilterToggledV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		assert.Error(t, err)
	})

	t.Run("RegistryError", func(t *testing.T) {
		si := new(MockSchemaIdentifier)
		errRegistry := errors.New("registry is down")
		si.On(
			"DetermineID", t.Context(), subject, schema.FilterToggledSchemaTextV1,
		).Return(0, errRegistry)

		_, err := schema.NewSerdeFilterToggledV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(si),
		)
		assert.ErrorIs(t, err, errRegistry)
		si.AssertExpectations(t)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		si := new(MockSchemaIdentifier)
		si.On(
			"DetermineID", t.Context(), subject, schema.FilterToggledSchemaTextV1,
		).Return(7, nil)

		serde, err := schema.NewSerdeFilterToggledV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(si),
		)
		require.NoError(t, err)

		in := schema.FilterToggledV1{
			ViewID:     "view-1",
			Dimension:  "packSize",
			Value:      "1kg",
			Selected:   true,
			OccurredAt: time.UnixMilli(1_700_000_000_000).UTC(),
		}
		data, err := serde.Encode(in)
		require.NoError(t, err)
		require.Greater(t, len(data), 5)
		assert.Equal(t, byte(0), data[0], "confluent wire format magic byte")

		var out schema.FilterToggledV1
		require.NoError(t, serde.Decode(data, &out))
		assert.Equal(t, in.ViewID, out.ViewID)
		assert.Equal(t, in.Dimension, out.Dimension)
		assert.Equal(t, in.Value, out.Value)
		assert.Equal(t, in.Selected, out.Selected)
		assert.True(t, in.OccurredAt.Equal(out.OccurredAt))
	})
}

func TestSerdeSearchPerformedV1(t *testing.T) {
	const subject = "catalog_searches-value"

	si := new(MockSchemaIdentifier)
	si.On(
		"DetermineID", t.Context(), subject, schema.SearchPerformedSchemaTextV1,
	).Return(3, nil)

	serde, err := schema.NewSerdeSearchPerformedV1(
		t.Context(),
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(si),
	)
	require.NoError(t, err)

	in := schema.SearchPerformedV1{
		ViewID:      "view-2",
		Language:    "HI",
		Query:       "रागी",
		ResultCount: 2,
		OccurredAt:  time.UnixMilli(1_700_000_000_000).UTC(),
	}
	data, err := serde.Encode(in)
	require.NoError(t, err)

	var out schema.SearchPerformedV1
	require.NoError(t, serde.Decode(data, &out))
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, in.Language, out.Language)
	assert.Equal(t, in.ResultCount, out.ResultCount)
}
