package nluoracle

import (
	"strconv"
	"strings"

	"convflow/internal/flow"
)

// parseResponse turns the model's tuple-delimited text into an intent
// ranking and the entities mentioned, following the record/tuple wire
// format the prompt requests.
func parseResponse(content string, cfg Config) (flow.Intent, []flow.Entity) {
	ranking := map[string]float64{}
	var entities []flow.Entity

	recordDelim := cfg.RecordDelimiter
	if !strings.Contains(content, recordDelim) {
		recordDelim = "##"
	}

	for _, record := range strings.Split(content, recordDelim) {
		record = strings.TrimSpace(record)
		if record == "" || record == cfg.CompletionDelimiter || record == "<|COMPLETE|>" {
			continue
		}
		record = strings.Trim(record, "()")

		tupleDelim := cfg.TupleDelimiter
		if !strings.Contains(record, tupleDelim) {
			tupleDelim = "<||>"
		}
		parts := strings.Split(record, tupleDelim)
		if len(parts) < 2 {
			continue
		}
		kind := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}

		switch kind {
		case "intent":
			confidence := 0.0
			if len(parts) >= 3 {
				if v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
					confidence = v
				}
			}
			ranking[name] = confidence
		case "entity":
			text := ""
			if len(parts) >= 3 {
				text = strings.TrimSpace(parts[2])
			}
			entities = append(entities, flow.Entity{Name: name, Text: text})
		}
	}

	top := ""
	best := -1.0
	for name, confidence := range ranking {
		if confidence > best {
			best = confidence
			top = name
		}
	}

	return flow.Intent{Name: top, Ranking: ranking}, entities
}
