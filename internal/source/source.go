// Package source fetches raw MFI metric records from the REST API or from local files.
package source

import (
	"bytes"
	"encoding/json"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// New builds the source described by cfg, wrapped with the response cache when one is given.
func New(cfg *contract.Config, store contract.CacheStore) contract.Source {
	var src contract.Source
	switch cfg.Source {
	case schema.FileSource:
		src = NewFileSource(cfg.InputFile)
	default:
		src = NewRESTSource(RESTOptions{
			BaseURL:  cfg.APIURL,
			Endpoint: cfg.Endpoint,
			Token:    cfg.APIToken,
			Timeout:  cfg.Timeout,
			Limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		})
		// Local files are cheap to re-read, so only API responses are cached
		if store != nil {
			src = NewCachedSource(src, store, cfg.CacheTTL)
		}
	}
	return src
}

// decodeRecords accepts either a bare JSON array of records or an envelope
// object with a "data" array.
func decodeRecords(body []byte) ([]schema.RawMetric, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, eris.New("empty response body")
	}

	var records []schema.RawMetric
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, eris.Wrap(err, "decode record array")
		}
	case '{':
		var envelope struct {
			Data *[]schema.RawMetric `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, eris.Wrap(err, "decode record envelope")
		}
		if envelope.Data == nil {
			return nil, eris.New("response object has no data array")
		}
		records = *envelope.Data
	default:
		return nil, eris.Errorf("unexpected response body starting with %q", body[0])
	}

	if records == nil {
		records = []schema.RawMetric{}
	}
	return records, nil
}
