package fs

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/jsonvault/pkg/core"
)

// envelope is the on-disk form of the database.
type envelope struct {
	Docs []core.Document `json:"docs"`
}

// codec turns the index into file bytes and back, optionally passing them
// through the AES-256-CBC filter.
type codec struct {
	key []byte // nil disables encryption
}

func (c codec) encrypted() bool {
	return c.key != nil
}

// encode serializes docs (in order) into the envelope and encrypts it if enabled.
func (c codec) encode(docs []core.Document) ([]byte, error) {
	if docs == nil {
		docs = []core.Document{}
	}
	data, err := json.Marshal(envelope{Docs: docs})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize database: %w", err)
	}
	if !c.encrypted() {
		return data, nil
	}
	return encryptCBC(c.key, data)
}

// decode parses file bytes into documents, decrypting first if enabled.
func (c codec) decode(raw []byte) ([]core.Document, error) {
	data := raw
	if c.encrypted() {
		pt, err := decryptCBC(c.key, raw)
		if err != nil {
			return nil, err
		}
		data = pt
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if c.encrypted() {
			// A wrong key can occasionally yield valid padding; the payload
			// still has to be a valid envelope.
			return nil, fmt.Errorf("%w: decrypted payload is not a database: %v", core.ErrDecrypt, err)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if env.Docs == nil {
		env.Docs = []core.Document{}
	}
	return env.Docs, nil
}
