package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const snapshotSchema = 1

// snapshotFile is the cached form of a collection. Local holds the origin
// of every record that is not confirmed.
type snapshotFile[T any] struct {
	Schema  int               `json:"schema"`
	Records []T               `json:"records"`
	Local   map[string]Origin `json:"local,omitempty"`
}

var errSchema = errors.New("unsupported snapshot schema")

func encodeSnapshot[T any](items []T, origin map[string]Origin) ([]byte, error) {
	f := snapshotFile[T]{Schema: snapshotSchema, Records: items}
	if f.Records == nil {
		f.Records = []T{}
	}
	if len(origin) > 0 {
		f.Local = make(map[string]Origin, len(origin))
		for id, o := range origin {
			if o != OriginConfirmed {
				f.Local[id] = o
			}
		}
	}
	return json.Marshal(f)
}

// decodeSnapshot accepts the versioned object and a bare JSON array of
// records. Duplicate ids keep their first occurrence.
func decodeSnapshot[T Entity[T]](data []byte) ([]T, map[string]Origin, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, errors.New("empty snapshot")
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, nil, err
		}
		return dedupe(items), nil, nil
	}

	var f snapshotFile[T]
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, err
	}
	if f.Schema != snapshotSchema {
		return nil, nil, fmt.Errorf("%w: %d", errSchema, f.Schema)
	}

	items := dedupe(f.Records)
	present := make(map[string]struct{}, len(items))
	for _, it := range items {
		present[it.EntityID()] = struct{}{}
	}
	origin := make(map[string]Origin, len(f.Local))
	for id, o := range f.Local {
		if _, ok := present[id]; !ok {
			continue
		}
		switch o {
		case OriginPending, OriginFailed:
			origin[id] = o
		}
	}
	return items, origin, nil
}
