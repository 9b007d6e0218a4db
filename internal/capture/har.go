package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/BetterCallFirewall/Cryptoscope/internal/storage"
)

// HARFile is the subset of HAR 1.2 the importer reads.
type HARFile struct {
	Log HARLog `json:"log"`
}

type HARLog struct {
	Version string  `json:"version"`
	Entries []Event `json:"entries"`
}

type ImportResult struct {
	Total    int `json:"total"`
	Captured int `json:"captured"`
	Skipped  int `json:"skipped"`
}

// ImportHAR feeds every entry of a HAR log through the recorder.
func (r *Recorder) ImportHAR(ctx context.Context, src io.Reader) (ImportResult, error) {
	var har HARFile
	if err := json.NewDecoder(src).Decode(&har); err != nil {
		return ImportResult{}, fmt.Errorf("failed to parse HAR: %w", err)
	}

	res := ImportResult{Total: len(har.Log.Entries)}
	for _, entry := range har.Log.Entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ok, err := r.Observe(ctx, entry, nil)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateExchange) {
				log.Printf("⚠️ Skipping duplicate HAR entry: %v", err)
				res.Skipped++
				continue
			}
			return res, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		res.Captured++
	}

	log.Printf("📦 Imported HAR: %d captured, %d skipped of %d entries", res.Captured, res.Skipped, res.Total)
	return res, nil
}
