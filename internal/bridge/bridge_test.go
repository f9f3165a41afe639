package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/openlitejet/litejet-core/internal/infrastructure/mqtt"
	"github.com/openlitejet/litejet-core/internal/litejet"
)

// MockPublisher implements Publisher for testing.
type MockPublisher struct {
	mu            sync.Mutex
	published     []mockPublish
	subscriptions []mockSubscription
	connected     bool
	handlers      map[string]mqtt.MessageHandler
}

type mockPublish struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

type mockSubscription struct {
	Topic string
	QoS   byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

func (m *MockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, mockPublish{
		Topic:    topic,
		Payload:  payload,
		QoS:      qos,
		Retained: retained,
	})
	return nil
}

func (m *MockPublisher) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = append(m.subscriptions, mockSubscription{Topic: topic, QoS: qos})
	m.handlers[topic] = handler
	return nil
}

func (m *MockPublisher) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, topic)
	for i, sub := range m.subscriptions {
		if sub.Topic == topic {
			m.subscriptions = append(m.subscriptions[:i], m.subscriptions[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockPublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockPublisher) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *MockPublisher) GetPublished() []mockPublish {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockPublish(nil), m.published...)
}

func (m *MockPublisher) GetSubscriptions() []mockSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockSubscription(nil), m.subscriptions...)
}

func (m *MockPublisher) ClearPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = nil
}

// SimulateMessage delivers an MQTT message to the wildcard command
// handler, as the broker would.
func (m *MockPublisher) SimulateMessage(topic string, payload []byte) error {
	m.mu.Lock()
	handler, ok := m.handlers[mqtt.Topics{}.AllCommands()]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return handler(topic, payload)
}

// lastPublishOn returns the most recent publish on a topic.
func (m *MockPublisher) lastPublishOn(topic string) (mockPublish, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.published) - 1; i >= 0; i-- {
		if m.published[i].Topic == topic {
			return m.published[i], true
		}
	}
	return mockPublish{}, false
}

// MockEngine implements Engine for testing.
type MockEngine struct {
	mu        sync.Mutex
	calls     []string
	levels    map[int]int
	states    map[int]bool
	loadNames map[int]string
	connected bool
	err       error
	handler   func(litejet.Event)
	loads     []int
	scenes    []int
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		levels:    make(map[int]int),
		states:    make(map[int]bool),
		loadNames: make(map[int]string),
		connected: true,
	}
}

func (m *MockEngine) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.err
}

func (m *MockEngine) ActivateLoad(_ context.Context, load int) error {
	return m.record("activate_load")
}

func (m *MockEngine) DeactivateLoad(_ context.Context, load int) error {
	return m.record("deactivate_load")
}

func (m *MockEngine) ActivateLoadAt(_ context.Context, load, level int, seconds float64) error {
	return m.record("activate_load_at")
}

func (m *MockEngine) ActivateScene(_ context.Context, scene int) error {
	return m.record("activate_scene")
}

func (m *MockEngine) DeactivateScene(_ context.Context, scene int) error {
	return m.record("deactivate_scene")
}

func (m *MockEngine) PressButton(_ context.Context, button int) error {
	return m.record("press_button")
}

func (m *MockEngine) ReleaseButton(_ context.Context, button int) error {
	return m.record("release_button")
}

func (m *MockEngine) QueryLoadLevel(_ context.Context, load int) (int, error) {
	if err := m.record("query_load_level"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[load], nil
}

func (m *MockEngine) AllLoadStates(_ context.Context) (map[int]bool, error) {
	if err := m.record("all_load_states"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	states := make(map[int]bool, len(m.states))
	for k, v := range m.states {
		states[k] = v
	}
	return states, nil
}

func (m *MockEngine) LoadName(_ context.Context, load int) (string, error) {
	if err := m.record("load_name"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadNames[load], nil
}

func (m *MockEngine) SceneName(_ context.Context, scene int) (string, error) {
	if err := m.record("scene_name"); err != nil {
		return "", err
	}
	return "", nil
}

func (m *MockEngine) Loads() []int  { return m.loads }
func (m *MockEngine) Scenes() []int { return m.scenes }

func (m *MockEngine) Subscribe(fn func(litejet.Event)) func() {
	m.mu.Lock()
	m.handler = fn
	m.mu.Unlock()
	return func() {}
}

func (m *MockEngine) Stats() litejet.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return litejet.Stats{Connected: m.connected}
}

func (m *MockEngine) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SimulateEvent delivers a panel event to the bridge's subscriber.
func (m *MockEngine) SimulateEvent(ev litejet.Event) {
	m.mu.Lock()
	fn := m.handler
	m.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockRecorder implements Recorder for testing.
type MockRecorder struct {
	mu      sync.Mutex
	records []recordedLevel
	pruned  []time.Duration
}

type recordedLevel struct {
	Load   int
	Level  int
	Source string
}

func (m *MockRecorder) RecordLevel(_ context.Context, load, level int, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recordedLevel{Load: load, Level: level, Source: source})
	return nil
}

func (m *MockRecorder) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = append(m.pruned, olderThan)
	return 0, nil
}

func (m *MockRecorder) Records() []recordedLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedLevel(nil), m.records...)
}

// MockMetrics implements Metrics and StatsWriter for testing.
type MockMetrics struct {
	mu     sync.Mutex
	levels []recordedLevel
	points []string
}

func (m *MockMetrics) WriteLoadLevel(load, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = append(m.levels, recordedLevel{Load: load, Level: level})
}

func (m *MockMetrics) WriteButtonEvent(int, bool) {}

func (m *MockMetrics) WriteSceneActivation(int) {}

func (m *MockMetrics) WritePoint(measurement string, _ map[string]string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, measurement)
}

func (m *MockMetrics) Levels() []recordedLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedLevel(nil), m.levels...)
}

func (m *MockMetrics) Points() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.points...)
}

// newTestBridge creates a started bridge with mocks and registers
// cleanup.
func newTestBridge(t *testing.T, opts Options) (*Bridge, *MockPublisher, *MockEngine) {
	t.Helper()

	pub := NewMockPublisher()
	eng := NewMockEngine()
	if opts.MQTT == nil {
		opts.MQTT = pub
	} else {
		pub = opts.MQTT.(*MockPublisher)
	}
	if opts.Engine == nil {
		opts.Engine = eng
	} else {
		eng = opts.Engine.(*MockEngine)
	}

	b, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(b.Stop)

	return b, pub, eng
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{MQTT: NewMockPublisher()}); err == nil {
		t.Error("New() without engine should return error")
	}
	if _, err := New(Options{Engine: NewMockEngine()}); err == nil {
		t.Error("New() without MQTT client should return error")
	}
}

func TestStart_SubscribesToCommands(t *testing.T) {
	_, pub, _ := newTestBridge(t, Options{})

	subs := pub.GetSubscriptions()
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}
	if want := (mqtt.Topics{}).AllCommands(); subs[0].Topic != want {
		t.Errorf("subscription topic = %q, want %q", subs[0].Topic, want)
	}
	if subs[0].QoS != 1 {
		t.Errorf("subscription QoS = %d, want 1", subs[0].QoS)
	}
}

func TestStart_PublishesStartingHealth(t *testing.T) {
	_, pub, _ := newTestBridge(t, Options{})

	healthTopic := mqtt.Topics{}.Health()
	p, ok := pub.lastPublishOn(healthTopic)
	if !ok {
		t.Fatal("no health message published on start")
	}
	if !p.Retained {
		t.Error("health message not retained")
	}

	var msg HealthMessage
	if err := json.Unmarshal(p.Payload, &msg); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if msg.Bridge != "litejet" {
		t.Errorf("Bridge = %q, want %q", msg.Bridge, "litejet")
	}
}

func TestLoadCommands(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCall string
	}{
		{"on", `{"command":"on"}`, "activate_load"},
		{"off", `{"command":"off"}`, "deactivate_load"},
		{"set", `{"command":"set","level":60,"seconds":2.5}`, "activate_load_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, pub, eng := newTestBridge(t, Options{})
			pub.ClearPublished()

			topic := mqtt.Topics{}.LoadCommand(5)
			if err := pub.SimulateMessage(topic, []byte(tt.payload)); err != nil {
				t.Fatalf("SimulateMessage() error = %v", err)
			}

			calls := eng.Calls()
			found := false
			for _, c := range calls {
				if c == tt.wantCall {
					found = true
				}
			}
			if !found {
				t.Errorf("engine calls = %v, want %q", calls, tt.wantCall)
			}

			ack, ok := pub.lastPublishOn(mqtt.Topics{}.Ack(KindLoad, 5))
			if !ok {
				t.Fatal("no ack published")
			}
			var msg AckMessage
			if err := json.Unmarshal(ack.Payload, &msg); err != nil {
				t.Fatalf("unmarshal ack: %v", err)
			}
			if msg.Status != AckAccepted {
				t.Errorf("ack status = %q, want %q", msg.Status, AckAccepted)
			}
			if msg.Number != 5 {
				t.Errorf("ack number = %d, want 5", msg.Number)
			}
		})
	}
}

func TestSceneAndButtonCommands(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		payload  string
		wantCall string
	}{
		{"scene on", mqtt.Topics{}.SceneCommand(3), `{"command":"on"}`, "activate_scene"},
		{"scene off", mqtt.Topics{}.SceneCommand(3), `{"command":"off"}`, "deactivate_scene"},
		{"button press", mqtt.Topics{}.ButtonCommand(12), `{"command":"press"}`, "press_button"},
		{"button release", mqtt.Topics{}.ButtonCommand(12), `{"command":"release"}`, "release_button"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, pub, eng := newTestBridge(t, Options{})

			if err := pub.SimulateMessage(tt.topic, []byte(tt.payload)); err != nil {
				t.Fatalf("SimulateMessage() error = %v", err)
			}

			calls := eng.Calls()
			if len(calls) == 0 || calls[len(calls)-1] != tt.wantCall {
				t.Errorf("engine calls = %v, want last %q", calls, tt.wantCall)
			}
		})
	}
}

func TestSceneCommandPublishesState(t *testing.T) {
	_, pub, _ := newTestBridge(t, Options{})
	pub.ClearPublished()

	if err := pub.SimulateMessage(mqtt.Topics{}.SceneCommand(3), []byte(`{"command":"on"}`)); err != nil {
		t.Fatalf("SimulateMessage() error = %v", err)
	}

	p, ok := pub.lastPublishOn(mqtt.Topics{}.SceneState(3))
	if !ok {
		t.Fatal("no scene state published")
	}
	if !p.Retained {
		t.Error("scene state not retained")
	}

	var msg SceneStateMessage
	if err := json.Unmarshal(p.Payload, &msg); err != nil {
		t.Fatalf("unmarshal scene state: %v", err)
	}
	if msg.Scene != 3 || !msg.Active {
		t.Errorf("scene state = %+v, want scene 3 active", msg)
	}
}

func TestCommand_UnknownKindFails(t *testing.T) {
	_, pub, _ := newTestBridge(t, Options{})

	err := pub.SimulateMessage("litejet/command/thermostat/1", []byte(`{"command":"on"}`))
	if err == nil {
		t.Fatal("SimulateMessage() should return error for unknown kind")
	}

	ack, ok := pub.lastPublishOn(mqtt.Topics{}.Ack("thermostat", 1))
	if !ok {
		t.Fatal("no error ack published")
	}
	var msg AckMessage
	if err := json.Unmarshal(ack.Payload, &msg); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if msg.Status != AckFailed {
		t.Errorf("ack status = %q, want %q", msg.Status, AckFailed)
	}
	if msg.Error == nil || msg.Error.Code != ErrCodeInvalidCommand {
		t.Errorf("ack error = %+v, want code %q", msg.Error, ErrCodeInvalidCommand)
	}
}

func TestCommand_MalformedPayloadFails(t *testing.T) {
	_, pub, _ := newTestBridge(t, Options{})

	err := pub.SimulateMessage(mqtt.Topics{}.LoadCommand(5), []byte(`not json`))
	if err == nil {
		t.Fatal("SimulateMessage() should return error for malformed payload")
	}

	ack, ok := pub.lastPublishOn(mqtt.Topics{}.Ack(KindLoad, 5))
	if !ok {
		t.Fatal("no error ack published")
	}
	var msg AckMessage
	if err := json.Unmarshal(ack.Payload, &msg); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if msg.Error == nil || msg.Error.Code != ErrCodeInvalidParameters {
		t.Errorf("ack error = %+v, want code %q", msg.Error, ErrCodeInvalidParameters)
	}
}

func TestCommand_EngineTimeoutAcksTimeout(t *testing.T) {
	eng := NewMockEngine()
	eng.err = litejet.ErrTimeout

	_, pub, _ := newTestBridge(t, Options{Engine: eng})

	err := pub.SimulateMessage(mqtt.Topics{}.LoadCommand(5), []byte(`{"command":"on"}`))
	if err == nil {
		t.Fatal("SimulateMessage() should surface the engine error")
	}

	ack, ok := pub.lastPublishOn(mqtt.Topics{}.Ack(KindLoad, 5))
	if !ok {
		t.Fatal("no error ack published")
	}
	var msg AckMessage
	if err := json.Unmarshal(ack.Payload, &msg); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if msg.Status != AckTimeout {
		t.Errorf("ack status = %q, want %q", msg.Status, AckTimeout)
	}
	if msg.Error == nil || msg.Error.Code != ErrCodeTimeout {
		t.Errorf("ack error = %+v, want code %q", msg.Error, ErrCodeTimeout)
	}
}

func TestEvent_LoadLevelPublishesRetainedState(t *testing.T) {
	_, pub, eng := newTestBridge(t, Options{})
	pub.ClearPublished()

	eng.SimulateEvent(litejet.Event{Kind: litejet.EventLoadLevelChanged, Index: 7, Level: 80})

	p, ok := pub.lastPublishOn(mqtt.Topics{}.LoadState(7))
	if !ok {
		t.Fatal("no load state published")
	}
	if !p.Retained {
		t.Error("load state not retained")
	}

	var msg LoadStateMessage
	if err := json.Unmarshal(p.Payload, &msg); err != nil {
		t.Fatalf("unmarshal load state: %v", err)
	}
	if msg.Load != 7 || msg.Level != 80 || !msg.On {
		t.Errorf("load state = %+v, want load 7 level 80 on", msg)
	}
}

func TestEvent_RepeatedLevelSuppressed(t *testing.T) {
	_, pub, eng := newTestBridge(t, Options{})
	pub.ClearPublished()

	eng.SimulateEvent(litejet.Event{Kind: litejet.EventLoadLevelChanged, Index: 7, Level: 80})
	eng.SimulateEvent(litejet.Event{Kind: litejet.EventLoadLevelChanged, Index: 7, Level: 80})

	count := 0
	for _, p := range pub.GetPublished() {
		if p.Topic == (mqtt.Topics{}).LoadState(7) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("load state published %d times, want 1", count)
	}

	// A changed level publishes again.
	eng.SimulateEvent(litejet.Event{Kind: litejet.EventLoadLevelChanged, Index: 7, Level: 0})
	p, ok := pub.lastPublishOn(mqtt.Topics{}.LoadState(7))
	if !ok {
		t.Fatal("no load state for changed level")
	}
	var msg LoadStateMessage
	if err := json.Unmarshal(p.Payload, &msg); err != nil {
		t.Fatalf("unmarshal load state: %v", err)
	}
	if msg.Level != 0 || msg.On {
		t.Errorf("load state = %+v, want level 0 off", msg)
	}
}

func TestEvent_ButtonEdgesNotRetained(t *testing.T) {
	_, pub, eng := newTestBridge(t, Options{})
	pub.ClearPublished()

	eng.SimulateEvent(litejet.Event{Kind: litejet.EventButtonPressed, Index: 12})
	eng.SimulateEvent(litejet.Event{Kind: litejet.EventButtonReleased, Index: 12})

	published := pub.GetPublished()
	edges := 0
	for _, p := range published {
		if p.Topic != (mqtt.Topics{}).ButtonState(12) {
			continue
		}
		edges++
		if p.Retained {
			t.Error("button edge published retained")
		}
	}
	if edges != 2 {
		t.Errorf("button edges published = %d, want 2", edges)
	}

	var msg ButtonStateMessage
	last, _ := pub.lastPublishOn(mqtt.Topics{}.ButtonState(12))
	if err := json.Unmarshal(last.Payload, &msg); err != nil {
		t.Fatalf("unmarshal button state: %v", err)
	}
	if msg.Pressed {
		t.Error("last edge Pressed = true, want false")
	}
}

func TestEvent_RecordsHistory(t *testing.T) {
	rec := &MockRecorder{}
	_, _, eng := newTestBridge(t, Options{History: rec})

	eng.SimulateEvent(litejet.Event{Kind: litejet.EventLoadLevelChanged, Index: 7, Level: 80})

	records := rec.Records()
	if len(records) == 0 {
		t.Fatal("no history recorded")
	}
	last := records[len(records)-1]
	if last.Load != 7 || last.Level != 80 || last.Source != "event" {
		t.Errorf("record = %+v, want load 7 level 80 source event", last)
	}
}

func TestEvent_WritesMetrics(t *testing.T) {
	metrics := &MockMetrics{}
	_, _, eng := newTestBridge(t, Options{Metrics: metrics})

	eng.SimulateEvent(litejet.Event{Kind: litejet.EventLoadLevelChanged, Index: 7, Level: 80})

	levels := metrics.Levels()
	if len(levels) == 0 {
		t.Fatal("no load level written to metrics")
	}
	if last := levels[len(levels)-1]; last.Load != 7 || last.Level != 80 {
		t.Errorf("metric = %+v, want load 7 level 80", last)
	}
}

func TestSyncLoads_SeedsRetainedState(t *testing.T) {
	eng := NewMockEngine()
	eng.loads = []int{1, 2}
	eng.states = map[int]bool{1: true, 2: false}
	eng.levels = map[int]int{1: 55}

	_, pub, _ := newTestBridge(t, Options{Engine: eng})

	waitFor(t, func() bool {
		_, ok1 := pub.lastPublishOn(mqtt.Topics{}.LoadState(1))
		_, ok2 := pub.lastPublishOn(mqtt.Topics{}.LoadState(2))
		return ok1 && ok2
	}, "initial load states never published")

	p1, _ := pub.lastPublishOn(mqtt.Topics{}.LoadState(1))
	var msg LoadStateMessage
	if err := json.Unmarshal(p1.Payload, &msg); err != nil {
		t.Fatalf("unmarshal load state: %v", err)
	}
	if msg.Level != 55 {
		t.Errorf("load 1 level = %d, want 55", msg.Level)
	}

	p2, _ := pub.lastPublishOn(mqtt.Topics{}.LoadState(2))
	if err := json.Unmarshal(p2.Payload, &msg); err != nil {
		t.Fatalf("unmarshal load state: %v", err)
	}
	if msg.Level != 0 || msg.On {
		t.Errorf("load 2 state = %+v, want level 0 off", msg)
	}
}

func TestNamesOnStart_PublishesDiscovery(t *testing.T) {
	eng := NewMockEngine()
	eng.loads = []int{1}
	eng.scenes = []int{2}
	eng.loadNames = map[int]string{1: "KITCHEN"}

	_, pub, _ := newTestBridge(t, Options{Engine: eng, NamesOnStart: true})

	waitFor(t, func() bool {
		_, ok := pub.lastPublishOn(mqtt.Topics{}.Discovery())
		return ok
	}, "discovery never published")

	p, _ := pub.lastPublishOn(mqtt.Topics{}.Discovery())
	if !p.Retained {
		t.Error("discovery not retained")
	}

	var msg DiscoveryMessage
	if err := json.Unmarshal(p.Payload, &msg); err != nil {
		t.Fatalf("unmarshal discovery: %v", err)
	}
	if msg.Loads[1] != "KITCHEN" {
		t.Errorf("discovery loads = %v, want name for load 1", msg.Loads)
	}
}

func TestStop_PublishesStoppingHealth(t *testing.T) {
	b, pub, _ := newTestBridge(t, Options{})

	b.Stop()

	p, ok := pub.lastPublishOn(mqtt.Topics{}.Health())
	if !ok {
		t.Fatal("no health message published")
	}
	var msg HealthMessage
	if err := json.Unmarshal(p.Payload, &msg); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if msg.Status != HealthStopping {
		t.Errorf("final health status = %q, want %q", msg.Status, HealthStopping)
	}

	// Second Stop is a no-op.
	b.Stop()
}

func TestStop_DropsCommandSubscription(t *testing.T) {
	b, pub, _ := newTestBridge(t, Options{})

	b.Stop()

	for _, sub := range pub.GetSubscriptions() {
		if sub.Topic == (mqtt.Topics{}).AllCommands() {
			t.Errorf("command subscription still tracked after Stop")
		}
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", litejet.ErrTimeout, ErrCodeTimeout},
		{"invalid argument", litejet.ErrInvalidArgument, ErrCodeInvalidParameters},
		{"disconnected", litejet.ErrDisconnected, ErrCodePanelUnreachable},
		{"context deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"other", errTest, ErrCodeBridgeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorCode(tt.err); got != tt.want {
				t.Errorf("errorCode(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test error" }

func TestCommandTopicParsing(t *testing.T) {
	_, pub, _ := newTestBridge(t, Options{})

	invalid := []string{
		"litejet/command/load",        // too few parts
		"litejet/state/load/5",        // wrong category
		"litejet/command/load/twelve", // non-numeric number
	}
	for _, topic := range invalid {
		if err := pub.SimulateMessage(topic, []byte(`{"command":"on"}`)); err == nil {
			t.Errorf("SimulateMessage(%q) should return error", topic)
		}
	}
}
