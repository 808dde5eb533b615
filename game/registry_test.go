package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateIfAbsentKeepsExisting(t *testing.T) {
	reg := NewRegistry()

	room, created := reg.CreateIfAbsent("r1", RoomConfig{SizeLabel: "3x3", Dimension: 3, HostPlaysX: true})
	require.True(t, created)
	assert.Len(t, room.Board, 9)
	assert.Len(t, room.Lines, 8)
	assert.Equal(t, PlayerX, room.Turn)

	again, created := reg.CreateIfAbsent("r1", RoomConfig{SizeLabel: "9x9", Dimension: 9})
	assert.False(t, created)
	assert.Same(t, room, again)
	assert.Equal(t, 3, again.Dimension)
	assert.True(t, again.HostPlaysX)
}

func TestRegistryGetAndDelete(t *testing.T) {
	reg := NewRegistry()
	reg.CreateIfAbsent("r1", RoomConfig{SizeLabel: "3x3", Dimension: 3})

	_, ok := reg.Get("r1")
	assert.True(t, ok)
	assert.Equal(t, 1, reg.Len())

	reg.Delete("r1")
	_, ok = reg.Get("r1")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())

	reg.Delete("missing")
}

func TestRegistryWithParticipant(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"b", "a", "c"} {
		room, _ := reg.CreateIfAbsent(id, RoomConfig{SizeLabel: "3x3", Dimension: 3})
		room.Participants = []ConnID{"host-" + ConnID(id)}
	}
	a, _ := reg.Get("a")
	a.Participants = append(a.Participants, "guest")
	c, _ := reg.Get("c")
	c.Participants = append(c.Participants, "guest")

	rooms := reg.WithParticipant("guest")
	require.Len(t, rooms, 2)
	assert.Equal(t, "a", rooms[0].ID)
	assert.Equal(t, "c", rooms[1].ID)
	assert.Empty(t, reg.WithParticipant("nobody"))
}
