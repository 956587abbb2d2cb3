package payload

import (
	"fmt"
	"strconv"
	"strings"

	"DefiPrime/internal/domain/models"

	"github.com/tidwall/gjson"
)

// Fields names the gjson paths used to read a payload.
type Fields struct {
	ListPath  string `yaml:"list_path" default:"data"`
	Timestamp string `yaml:"timestamp" default:"timestamp"`
	Rate      string `yaml:"rate" default:"apy"`
	Value     string `yaml:"value" default:"tvlUsd"`
}

// DefaultFields matches the DefiLlama yields chart payload.
var DefaultFields = Fields{ListPath: "data", Timestamp: "timestamp", Rate: "apy", Value: "tvlUsd"}

// ParseRecords extracts raw records from a JSON body. The list may be the top
// level array or sit under Fields.ListPath of an envelope object. Errors are
// *models.SourceUnavailableError.
func ParseRecords(entityID string, body []byte, f Fields) ([]models.RawRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, models.Unavailable(entityID, models.ReasonMalformedPayload, fmt.Errorf("invalid json"))
	}

	root := gjson.ParseBytes(body)
	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.IsObject():
		list = root.Get(f.ListPath)
		if !list.IsArray() {
			return nil, models.Unavailable(entityID, models.ReasonMalformedPayload,
				fmt.Errorf("no %q list in payload", f.ListPath))
		}
	default:
		return nil, models.Unavailable(entityID, models.ReasonMalformedPayload,
			fmt.Errorf("unexpected payload type %s", root.Type))
	}

	items := list.Array()
	if len(items) == 0 {
		return nil, models.Unavailable(entityID, models.ReasonEmptyPayload, nil)
	}

	out := make([]models.RawRecord, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, models.Unavailable(entityID, models.ReasonMalformedPayload,
				fmt.Errorf("record %d is %s, not an object", i, item.Type))
		}
		rate, err := number(field(item, f.Rate))
		if err != nil {
			return nil, models.Unavailable(entityID, models.ReasonInvalidRecord, fmt.Errorf("record %d %s: %w", i, f.Rate, err))
		}
		value, err := number(field(item, f.Value))
		if err != nil {
			return nil, models.Unavailable(entityID, models.ReasonInvalidRecord, fmt.Errorf("record %d %s: %w", i, f.Value, err))
		}
		out = append(out, models.RawRecord{
			Timestamp: timestamp(item.Get(f.Timestamp)),
			Rate:      rate,
			Value:     value,
		})
	}
	return out, nil
}

// field reads path from item. An empty path selects nothing.
func field(item gjson.Result, path string) gjson.Result {
	if path == "" {
		return gjson.Result{}
	}
	return item.Get(path)
}

func timestamp(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(r.String())
	default:
		return ""
	}
}

// number returns nil for absent or null fields.
func number(r gjson.Result) (*float64, error) {
	switch r.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		v := r.Float()
		return &v, nil
	case gjson.String:
		if strings.TrimSpace(r.Str) == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", r.Str)
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("unexpected %s", r.Type)
	}
}
