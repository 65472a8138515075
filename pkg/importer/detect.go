package importer

import (
	"strings"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

// detectRows is how many data rows are sampled for model-name detection.
const detectRows = 5

// DetectProvider guesses which vendor dashboard produced an export.
// Header fingerprints are checked before model names. modelCells holds the
// model column value of the leading data rows.
func DetectProvider(headers []string, modelCells []string) model.Provider {
	joined := strings.ToLower(strings.Join(headers, " "))
	switch {
	case strings.Contains(joined, "organization") || strings.Contains(joined, "snapshot"):
		return model.ProviderOpenAI
	case strings.Contains(joined, "project_id") || strings.Contains(joined, "vertex"):
		return model.ProviderGoogle
	}

	for i, cell := range modelCells {
		if i == detectRows {
			break
		}
		if p, ok := model.InferProvider(cell); ok {
			return p
		}
	}
	return model.ProviderAnthropic
}
