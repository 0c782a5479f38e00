package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/parentlink/internal/models"
)

func TestDefaults(t *testing.T) {
	s, err := Defaults()
	require.NoError(t, err)

	require.Len(t, s.Messages, 1)
	assert.Equal(t, "welcome", s.Messages[0].ID)
	assert.Equal(t, models.StatusUnread, s.Messages[0].Status)
	require.Len(t, s.Posts, 1)
	assert.Empty(t, s.UrgentMemos)
	assert.Empty(t, s.ArrivalPings)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
proposals:
  - id: p1
    childId: c1
    proposedTime: "2024-03-01T15:30:00Z"
    status: pending
`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Proposals, 1)
	assert.Equal(t, "c1", s.Proposals[0].ChildID)
	assert.Empty(t, s.Messages, "collections missing from the file start empty")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.Len(t, def.Messages, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown collection", data: "grades: []"},
		{name: "unknown field", data: "posts:\n  - id: a\n    likes: 3\n"},
		{name: "duplicate id", data: "posts:\n  - id: a\n  - id: a\n"},
		{name: "missing id", data: "arrival_pings:\n  - childId: c1\n"},
		{name: "not yaml", data: "posts: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Messages)
}
