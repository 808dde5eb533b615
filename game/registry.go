package game

import (
	"sort"
	"sync"
)

// Registry maps room ids to rooms. The lock protects the map only; room
// contents are mutated by Service, which serializes its operations.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// CreateIfAbsent returns the room for id, creating it from cfg if needed. An
// existing room is returned unchanged and created is false; cfg is ignored.
func (reg *Registry) CreateIfAbsent(id string, cfg RoomConfig) (room *Room, created bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[id]; ok {
		return room, false
	}
	room = newRoom(id, cfg)
	reg.rooms[id] = room
	return room, true
}

func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

func (reg *Registry) Delete(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// WithParticipant returns the rooms conn plays in, ordered by id.
func (reg *Registry) WithParticipant(conn ConnID) []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var rooms []*Room
	for _, room := range reg.rooms {
		if room.HasParticipant(conn) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}
