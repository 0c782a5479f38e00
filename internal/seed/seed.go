// Package seed provides the records a collection starts from when the
// durable cache has nothing usable.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/parentlink/internal/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Set holds one seed list per collection.
type Set struct {
	Messages     []models.Message     `yaml:"messages"`
	UrgentMemos  []models.UrgentMemo  `yaml:"urgent_memos"`
	Proposals    []models.Proposal    `yaml:"proposals"`
	Posts        []models.Post        `yaml:"posts"`
	ArrivalPings []models.ArrivalPing `yaml:"arrival_pings"`
}

// Defaults returns the built-in fixtures.
func Defaults() (Set, error) {
	return Parse(defaultsYAML)
}

// Load reads the fixture file at path, or the built-in fixtures when path
// is empty.
func Load(path string) (Set, error) {
	if path == "" {
		return Defaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML fixtures. Unknown keys and duplicate or empty ids are
// errors.
func Parse(data []byte) (Set, error) {
	var s Set

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Set{}, fmt.Errorf("parse seed: %w", err)
	}

	checks := []struct {
		name models.Collection
		ids  []string
	}{
		{models.CollectionMessages, idsOf(s.Messages)},
		{models.CollectionUrgentMemos, idsOf(s.UrgentMemos)},
		{models.CollectionProposals, idsOf(s.Proposals)},
		{models.CollectionPosts, idsOf(s.Posts)},
		{models.CollectionArrivalPings, idsOf(s.ArrivalPings)},
	}
	for _, c := range checks {
		if err := uniqueIDs(c.name, c.ids); err != nil {
			return Set{}, err
		}
	}
	return s, nil
}

func idsOf[T interface{ EntityID() string }](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.EntityID()
	}
	return out
}

func uniqueIDs(name models.Collection, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("seed %s: record without id", name)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("seed %s: duplicate id %q", name, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
