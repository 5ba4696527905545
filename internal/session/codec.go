// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import (
	"github.com/samber/oops"
	"github.com/vmihailenco/msgpack/v5"
)

// encodeRecord serializes a record payload to MessagePack. The format is
// self-describing, so arbitrary key-value session data round-trips without
// a schema.
func encodeRecord(record *Record) ([]byte, error) {
	data, err := msgpack.Marshal(record)
	if err != nil {
		return nil, oops.Code("SESSION_ENCODE_FAILED").
			With("operation", "marshal record").
			Wrap(err)
	}
	return data, nil
}

// decodeRecord deserializes a stored payload back into a record.
func decodeRecord(data []byte) (*Record, error) {
	var record Record
	if err := msgpack.Unmarshal(data, &record); err != nil {
		return nil, oops.Code("SESSION_DECODE_FAILED").
			With("operation", "unmarshal record").
			Wrap(err)
	}
	if record.Data == nil {
		record.Data = make(map[string]any)
	}
	return &record, nil
}
