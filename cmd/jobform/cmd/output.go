package cmd

import (
	"encoding/json"

	"github.com/goliatone/go-jobform/pkg/formstate"
)

func marshalSummary(payload formstate.Payload) ([]byte, error) {
	data, err := json.MarshalIndent(map[string]any{
		"workspace": payload.Type,
		"payload":   payload.Summary(),
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
