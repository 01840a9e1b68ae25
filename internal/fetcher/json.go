package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// JSONOptions configures DecodeJSONArray.
type JSONOptions struct {
	// Key names the field holding the array when the document is an object,
	// e.g. {"plants": [...]}. Ignored for a top-level array.
	Key string
}

// DecodeJSONArray decodes a JSON array streaming, sending each element to a channel.
// Accepts [{...},{...}] or, with opts.Key set, {"<key>": [{...}]}.
// Both channels are closed when processing completes.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader, opts JSONOptions) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(outCh)

		decoder := json.NewDecoder(r)
		if err := seekArray(decoder, opts.Key); err != nil {
			if err != io.EOF {
				errCh <- err
			}
			return
		}

		for i := 0; decoder.More(); i++ {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}

			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrapf(err, "json: decode element %d", i)
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		// Consume closing bracket
		if _, err := decoder.Token(); err != nil && err != io.EOF {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// seekArray advances the decoder past the opening bracket of the array.
func seekArray(decoder *json.Decoder, key string) error {
	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return err
		}
		return eris.Wrap(err, "json: read opening token")
	}

	switch tok {
	case json.Delim('['):
		return nil
	case json.Delim('{'):
		if key == "" {
			return eris.New("json: expected '[', got object")
		}
	default:
		return eris.Errorf("json: expected '[', got %v", tok)
	}

	for decoder.More() {
		name, err := decoder.Token()
		if err != nil {
			return eris.Wrap(err, "json: read object key")
		}
		if name != key {
			var skip json.RawMessage
			if err := decoder.Decode(&skip); err != nil {
				return eris.Wrapf(err, "json: skip field %v", name)
			}
			continue
		}
		tok, err := decoder.Token()
		if err != nil {
			return eris.Wrapf(err, "json: read %s", key)
		}
		if tok != json.Delim('[') {
			return eris.Errorf("json: field %q is not an array", key)
		}
		return nil
	}
	return eris.Errorf("json: field %q not found", key)
}
