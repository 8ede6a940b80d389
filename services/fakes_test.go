package services

import (
	"context"
	"sync"
	"time"

	"safeher/models"
	"safeher/utils"
)

// Shared in-memory fakes for the capability ports.

type loggedEvent struct {
	eventType string
	extra     models.EventExtra
}

type fakeLogger struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (f *fakeLogger) LogEvent(ctx context.Context, eventType string, extra models.EventExtra) *models.SafetyEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, loggedEvent{eventType: eventType, extra: extra})
	meta := models.MetaForEvent(eventType)
	return &models.SafetyEvent{
		ID:        utils.GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Title:     meta.Title,
		Severity:  meta.Severity,
		Trigger:   extra.Trigger,
	}
}

func (f *fakeLogger) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

type fakeCommander struct {
	mu        sync.Mutex
	calls     []string
	connected bool

	shareErr   error
	composeErr error
	clipErr    error
	captureErr error
}

func (f *fakeCommander) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeCommander) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeCommander) StartSiren()                  { f.record("StartSiren") }
func (f *fakeCommander) StopSiren()                   { f.record("StopSiren") }
func (f *fakeCommander) Vibrate(p []int, r int)       { f.record("Vibrate") }
func (f *fakeCommander) StopVibration()               { f.record("StopVibration") }
func (f *fakeCommander) ShowAlarmOverlay(msg string)  { f.record("ShowAlarmOverlay") }
func (f *fakeCommander) HideAlarmOverlay()            { f.record("HideAlarmOverlay") }
func (f *fakeCommander) ShowCountdown(s int, src string) { f.record("ShowCountdown") }
func (f *fakeCommander) HideCountdown()               { f.record("HideCountdown") }
func (f *fakeCommander) StopCapture()                 { f.record("StopCapture") }
func (f *fakeCommander) ShowFakeCall(n, p string)     { f.record("ShowFakeCall") }
func (f *fakeCommander) RestartRecognizer()           { f.record("RestartRecognizer") }
func (f *fakeCommander) Toast(msg, level string)      { f.record("Toast") }

func (f *fakeCommander) StartCapture(payload models.WSCapturePayload) error {
	f.record("StartCapture")
	return f.captureErr
}

func (f *fakeCommander) ShareMessage(ctx context.Context, title, text string) error {
	f.record("ShareMessage")
	return f.shareErr
}

func (f *fakeCommander) ComposeSMS(phones []string, body string) error {
	f.record("ComposeSMS")
	return f.composeErr
}

func (f *fakeCommander) CopyToClipboard(ctx context.Context, text string) error {
	f.record("CopyToClipboard")
	return f.clipErr
}

func (f *fakeCommander) Connected() bool { return f.connected }

type acquireCall struct {
	reason string
	video  bool
	rear   bool
}

type fakeRecorder struct {
	mu       sync.Mutex
	acquired []acquireCall
	stopped  int
	active   bool
	err      error
}

func (f *fakeRecorder) Acquire(ctx context.Context, reason string, video, rear bool) (*models.RecordingHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.acquired = append(f.acquired, acquireCall{reason: reason, video: video, rear: rear})
	f.active = true
	return &models.RecordingHandle{
		ID:        "rec_test",
		Reason:    reason,
		StartedAt: time.Now(),
	}, nil
}

func (f *fakeRecorder) Stop(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	f.active = false
}

func (f *fakeRecorder) IsRecording() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

type dispatchCall struct {
	source string
	loc    *models.Position
}

type fakeDispatcher struct {
	mu        sync.Mutex
	calls     []dispatchCall
	result    models.DispatchResult
	cancelled int
}

func (f *fakeDispatcher) Notify(ctx context.Context, source string, loc *models.Position) models.DispatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatchCall{source: source, loc: loc})
	return f.result
}

func (f *fakeDispatcher) CancelLiveUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

func (f *fakeDispatcher) notifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLocation struct {
	mu       sync.Mutex
	fix      *models.Position
	profiles []models.AccuracyProfile
	watchers map[int]func(models.Position)
	nextID   int
}

func (f *fakeLocation) GetOnce(ctx context.Context, profile models.AccuracyProfile) *models.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, profile)
	return f.fix
}

func (f *fakeLocation) Watch(fn func(models.Position)) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchers == nil {
		f.watchers = make(map[int]func(models.Position))
	}
	f.nextID++
	f.watchers[f.nextID] = fn
	return f.nextID
}

func (f *fakeLocation) ClearWatch(handle int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.watchers, handle)
}

func (f *fakeLocation) LastFix() *models.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fix
}

func (f *fakeLocation) push(pos models.Position) {
	f.mu.Lock()
	f.fix = &pos
	fns := make([]func(models.Position), 0, len(f.watchers))
	for _, fn := range f.watchers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(pos)
	}
}

type raisedCandidate struct {
	source  string
	trigger models.EventTrigger
}

type fakeRaiser struct {
	mu     sync.Mutex
	raised []raisedCandidate
	active bool
}

func (f *fakeRaiser) RaiseCandidate(ctx context.Context, source string, trigger models.EventTrigger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raised = append(f.raised, raisedCandidate{source: source, trigger: trigger})
}

func (f *fakeRaiser) IsActive() bool { return f.active }

func (f *fakeRaiser) raiseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.raised)
}

type fakeEvents struct {
	mu       sync.Mutex
	events   []*models.SafetyEvent
	sessions []models.SessionStatus
}

func (f *fakeEvents) BroadcastEvent(event *models.SafetyEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEvents) BroadcastSession(status models.SessionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, status)
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	started int
	stopped int
	running bool
}

func (f *fakeBroadcaster) Start(run func(ctx context.Context)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	f.running = true
}

func (f *fakeBroadcaster) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	f.running = false
}

func (f *fakeBroadcaster) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

type fakeSender struct {
	mu   sync.Mutex
	name string
	live bool
	can  func(models.Contact) bool
	err  error
	sent []string
}

func (f *fakeSender) Name() string      { return f.name }
func (f *fakeSender) LiveCapable() bool { return f.live }

func (f *fakeSender) CanSend(contact models.Contact) bool {
	if f.can == nil {
		return true
	}
	return f.can(contact)
}

func (f *fakeSender) Send(ctx context.Context, contact models.Contact, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, contact.Name)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeContacts struct {
	contacts []models.Contact
	err      error
}

func (f *fakeContacts) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return f.contacts, f.err
}
