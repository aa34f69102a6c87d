package catalog

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

func ptr[T any](v T) *T { return &v }

func integer(lo float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Minimum: ptr(lo)}
}

func number(lo float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Minimum: ptr(lo)}
}

// janPattern keeps "_" free for proposal keys ("<fixture>_<jan>").
const janPattern = "^[^_]+$"

// productSchema builds a fresh schema per use; resolved schemas must form a tree.
func productSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"jan"},
		Properties: map[string]*jsonschema.Schema{
			"jan":          {Type: "string", MinLength: ptr(1), Pattern: janPattern},
			"name":         {Type: "string"},
			"maker":        {Type: "string"},
			"price":        integer(0),
			"costRate":     number(0),
			"rank":         {Type: "string"},
			"row":          integer(0),
			"order":        {Type: "number"},
			"face":         integer(0),
			"width_mm":     integer(0),
			"height_mm":    integer(0),
			"depth":        integer(0),
			"cap":          integer(0),
			"salesQty":     integer(0),
			"totalSales":   {Type: "integer"},
			"totalProfit":  {Type: "integer"},
			"dailyAvgQty":  number(0),
			"salesWeek":    {Type: "array", Items: integer(0)},
			"categoryName": {Type: "string"},
		},
	}
}

var fixtureSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"products"},
	Properties: map[string]*jsonschema.Schema{
		"fixtureId":    {Type: "string"},
		"rows":         integer(0),
		"shelfWidthMm": integer(0),
		"rowHeights": {
			Type:                 "object",
			PropertyNames:        &jsonschema.Schema{Pattern: "^[0-9]+$"},
			AdditionalProperties: integer(0),
		},
		"products": {Type: "array", Items: productSchema()},
		"removed":  {Type: "array", Items: productSchema()},
	},
}

var snapshotSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"fixtures"},
	Properties: map[string]*jsonschema.Schema{
		"storeCode":  {Type: "string"},
		"periodDays": integer(0),
		"departments": {
			Type:                 "object",
			AdditionalProperties: &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
		"fixtures": {Type: "object", AdditionalProperties: fixtureSchema},
	},
}

var resolved = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return snapshotSchema.Resolve(nil)
})

func validate(instance any) error {
	rs, err := resolved()
	if err != nil {
		return fmt.Errorf("failed to resolve catalog schema: %w", err)
	}
	if err := rs.Validate(instance); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}
