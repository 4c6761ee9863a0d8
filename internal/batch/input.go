package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/ratecard/internal/domain/normalize"
)

// ReadOffers loads a JSON array of raw offer inputs.
func ReadOffers(path string) ([]normalize.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	var offers []normalize.Raw
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, path, err)
	}
	if len(offers) == 0 {
		return nil, ErrNoOffers
	}
	return offers, nil
}
