package store

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/parentlink/internal/models"
)

func TestEncodeSnapshot_Golden(t *testing.T) {
	items := []models.Message{
		{ID: "tmp_msg_01", Title: "B", CreatedAt: "2024-01-02T00:00:00.000Z", Status: models.StatusRead},
		{ID: "m1", Title: "A", Body: "hello", Sender: "staff-1", CreatedAt: "2024-01-01T00:00:00.000Z", Status: models.StatusUnread},
	}
	origin := map[string]Origin{"tmp_msg_01": OriginPending, "m1": OriginConfirmed}

	data, err := encodeSnapshot(items, origin)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "messages_snapshot", data)
}

func TestEncodeSnapshot_Empty(t *testing.T) {
	data, err := encodeSnapshot[models.Post](nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema":1,"records":[]}`, string(data))
}

func TestDecodeSnapshot(t *testing.T) {
	items, origin, err := decodeSnapshot[models.Message]([]byte(`{"schema":1,"records":[{"id":"a"},{"id":"b"}],"local":{"a":"failed","b":"confirmed","c":"pending"}}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, map[string]Origin{"a": OriginFailed}, origin)

	_, _, err = decodeSnapshot[models.Message]([]byte(`{"schema":2}`))
	assert.ErrorIs(t, err, errSchema)

	_, _, err = decodeSnapshot[models.Message]([]byte(`[{"id":1}]`))
	assert.Error(t, err)
}
