package store

import (
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"

	"github.com/rpl/application-services/internal/engine"
)

// marshalSignature encodes the full signature for the detail column.
// Struct field order makes the encoding stable.
func marshalSignature(sig engine.Signature) (string, error) {
	data, err := json.Marshal(sig)
	if err != nil {
		return "", errors.Wrapf(err, "marshal signature %s", sig.Symbol)
	}
	return string(data), nil
}

func unmarshalSignature(data string) (engine.Signature, error) {
	var sig engine.Signature
	if err := json.Unmarshal([]byte(data), &sig); err != nil {
		return engine.Signature{}, errors.Wrap(err, "unmarshal signature")
	}
	return sig, nil
}
