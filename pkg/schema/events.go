package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const FilterToggledSchemaTextV1 = `{
	"type": "record",
	"namespace": "catalog",
	"name": "filter_toggled",
	"fields": [
		{"name": "view_id", "type": "string"},
		{"name": "dimension", "type": "string"},
		{"name": "value", "type": "string"},
		{"name": "selected", "type": "boolean"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

const SearchPerformedSchemaTextV1 = `{
	"type": "record",
	"namespace": "catalog",
	"name": "search_performed",
	"fields": [
		{"name": "view_id", "type": "string"},
		{"name": "language", "type": "string"},
		{"name": "query", "type": "string"},
		{"name": "result_count", "type": "int"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	FilterToggledV1 struct {
		ViewID     string    `avro:"view_id"`
		Dimension  string    `avro:"dimension"`
		Value      string    `avro:"value"`
		Selected   bool      `avro:"selected"`
		OccurredAt time.Time `avro:"occurred_at"`
	}

	SearchPerformedV1 struct {
		ViewID      string    `avro:"view_id"`
		Language    string    `avro:"language"`
		Query       string    `avro:"query"`
		ResultCount int       `avro:"result_count"`
		OccurredAt  time.Time `avro:"occurred_at"`
	}
)

func FilterToggledV1Avro() avro.Schema {
	return avro.MustParse(FilterToggledSchemaTextV1)
}

func SearchPerformedV1Avro() avro.Schema {
	return avro.MustParse(SearchPerformedSchemaTextV1)
}
