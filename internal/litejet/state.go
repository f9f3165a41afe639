package litejet

import "sync"

// LoadState is the cached view of one dimmer or relay output.
type LoadState struct {
	Level int
	Name  string
}

// On reports whether the load is at a nonzero level.
func (s LoadState) On() bool { return s.Level > 0 }

// SceneState is the cached view of one scene.
type SceneState struct {
	Name   string
	Active bool
}

// ButtonState is the cached view of one keypad switch.
type ButtonState struct {
	Name    string
	Pressed bool
}

// StateStore caches the last known state of every device on the board.
// It is populated from notification events and from query replies, in
// that single wire order, so it is eventually consistent with the panel
// but may lag it between lines. Reads never block the wire.
type StateStore struct {
	mu      sync.RWMutex
	loads   map[int]LoadState
	scenes  map[int]SceneState
	buttons map[int]ButtonState
}

func newStateStore() *StateStore {
	return &StateStore{
		loads:   make(map[int]LoadState),
		scenes:  make(map[int]SceneState),
		buttons: make(map[int]ButtonState),
	}
}

// Load returns the cached state of one load. Unknown loads report level
// zero and an empty name.
func (s *StateStore) Load(index int) LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads[index]
}

// LoadLevel returns the cached level of one load.
func (s *StateStore) LoadLevel(index int) int {
	return s.Load(index).Level
}

// Scene returns the cached state of one scene.
func (s *StateStore) Scene(index int) SceneState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenes[index]
}

// Button returns the cached state of one keypad switch.
func (s *StateStore) Button(index int) ButtonState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buttons[index]
}

// Loads returns a snapshot of every load with cached state.
func (s *StateStore) Loads() map[int]LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]LoadState, len(s.loads))
	for k, v := range s.loads {
		out[k] = v
	}
	return out
}

// apply folds one decoded event into the cache. Called from the reader
// goroutine before the event reaches subscribers, so a subscriber that
// reads the store during delivery sees the post-event state.
func (s *StateStore) apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Kind {
	case EventLoadLevelChanged:
		ls := s.loads[ev.Index]
		ls.Level = ev.Level
		s.loads[ev.Index] = ls
	case EventButtonPressed:
		bs := s.buttons[ev.Index]
		bs.Pressed = true
		s.buttons[ev.Index] = bs
	case EventButtonReleased:
		bs := s.buttons[ev.Index]
		bs.Pressed = false
		s.buttons[ev.Index] = bs
	case EventSceneActivated:
		sc := s.scenes[ev.Index]
		sc.Active = true
		s.scenes[ev.Index] = sc
	}
}

func (s *StateStore) setLoadLevel(index, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := s.loads[index]
	ls.Level = level
	s.loads[index] = ls
}

func (s *StateStore) setLoadName(index int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := s.loads[index]
	ls.Name = name
	s.loads[index] = ls
}

func (s *StateStore) setSceneName(index int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.scenes[index]
	sc.Name = name
	s.scenes[index] = sc
}

func (s *StateStore) setSceneActive(index int, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.scenes[index]
	sc.Active = active
	s.scenes[index] = sc
}

func (s *StateStore) setButtonName(index int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs := s.buttons[index]
	bs.Name = name
	s.buttons[index] = bs
}
