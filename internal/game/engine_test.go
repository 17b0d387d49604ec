package game

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bdvbs4e/backtriviapp/internal/models"
)

type fakeQuestions struct {
	mu       sync.Mutex
	batch    []models.Question
	outcomes map[uint]int
}

func (f *fakeQuestions) SampleRandom(n int) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batch, nil
}

func (f *fakeQuestions) RecordOutcome(questionID uint, correctAnswers int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = make(map[uint]int)
	}
	f.outcomes[questionID] += correctAnswers
}

type fakeResults struct {
	mu   sync.Mutex
	rows map[string]models.PlayerResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{rows: make(map[string]models.PlayerResult)}
}

func resultKey(roomID, playerID string) string {
	return roomID + "/" + playerID
}

func (f *fakeResults) Upsert(roomID string, result models.PlayerResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	result.RoomID = roomID
	f.rows[resultKey(roomID, result.PlayerID)] = result
	return nil
}

func (f *fakeResults) QueryByRoom(roomID string) ([]models.PlayerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PlayerResult
	for _, r := range f.rows {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (f *fakeResults) UpdateScore(roomID, playerID string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[resultKey(roomID, playerID)]; ok {
		r.Score = score
		f.rows[resultKey(roomID, playerID)] = r
	}
	return nil
}

func (f *fakeResults) UpdateElimination(roomID, playerID string, eliminated bool, round *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[resultKey(roomID, playerID)]; ok {
		r.Eliminated = eliminated
		r.EliminatedRound = round
		f.rows[resultKey(roomID, playerID)] = r
	}
	return nil
}

func (f *fakeResults) UpdateGameStatus(roomID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.rows {
		if r.RoomID == roomID {
			r.GameStatus = status
			f.rows[k] = r
		}
	}
	return nil
}

type fakeRecords struct {
	mu      sync.Mutex
	saved   map[string]models.GameRecord
	deleted []string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{saved: make(map[string]models.GameRecord)}
}

func (f *fakeRecords) Save(record models.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[record.RoomID] = record
	return nil
}

func (f *fakeRecords) Delete(roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, roomID)
	f.deleted = append(f.deleted, roomID)
	return nil
}

func (f *fakeRecords) GetByRoomID(roomID string) (*models.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.saved[roomID]; ok {
		return &rec, nil
	}
	return nil, fmt.Errorf("game not found")
}

type fakeStats struct {
	mu          sync.Mutex
	calls       int
	lastPlayers []models.PlayerState
}

func (f *fakeStats) RecordFinishedGame(roomID string, players []models.PlayerState, questions []models.Question, durationSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastPlayers = players
	return nil
}

func (f *fakeStats) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type busEvent struct {
	roomID string
	name   string
	data   interface{}
}

type fakeBroadcast struct {
	mu     sync.Mutex
	events []busEvent
}

func (f *fakeBroadcast) JoinRoom(roomID string, c ClientConn)  {}
func (f *fakeBroadcast) LeaveRoom(roomID string, c ClientConn) {}

func (f *fakeBroadcast) ToRoom(roomID string, event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{roomID: roomID, name: event, data: data})
}

func (f *fakeBroadcast) ToDashboard(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{name: "dashboard:" + event, data: data})
}

func (f *fakeBroadcast) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (f *fakeBroadcast) last(name string) (interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].name == name {
			return f.events[i].data, true
		}
	}
	return nil, false
}

type fakeClient struct {
	id     string
	mu     sync.Mutex
	events []busEvent
}

func (c *fakeClient) SessionID() string { return c.id }
func (c *fakeClient) Close()            {}

func (c *fakeClient) Send(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, busEvent{name: event, data: data})
	return nil
}

func (c *fakeClient) received(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.name == name {
			return true
		}
	}
	return false
}

type fixture struct {
	registry  *Registry
	engine    *Engine
	handler   *Handler
	questions *fakeQuestions
	results   *fakeResults
	records   *fakeRecords
	stats     *fakeStats
	bus       *fakeBroadcast

	sessionSeq int
}

func newFixture(capacity int, batch []models.Question) *fixture {
	registry := NewRegistry(capacity)
	fq := &fakeQuestions{batch: batch}
	fr := newFakeResults()
	frec := newFakeRecords()
	fs := &fakeStats{}
	fb := &fakeBroadcast{}

	engine := NewEngine(registry, fq, fr, frec, fs, fb, len(batch))
	engine.PreGameDelay = 5 * time.Millisecond
	engine.AnswerDeadline = 100 * time.Millisecond
	engine.InterRoundDelay = 10 * time.Millisecond
	engine.DisconnectGrace = 30 * time.Millisecond

	return &fixture{
		registry:  registry,
		engine:    engine,
		handler:   NewHandler(registry, engine),
		questions: fq,
		results:   fr,
		records:   frec,
		stats:     fs,
		bus:       fb,
	}
}

func (f *fixture) join(playerID string) *fakeClient {
	f.sessionSeq++
	client := &fakeClient{id: fmt.Sprintf("sess-%s-%d", playerID, f.sessionSeq)}
	f.handler.HandleJoin(client, JoinRequest{ID: playerID, Name: "Player " + playerID})
	return client
}

func (f *fixture) joinAndReady(playerIDs ...string) *Room {
	for _, id := range playerIDs {
		f.join(id)
	}
	room := f.registry.FindByPlayer(playerIDs[0])
	for _, id := range playerIDs {
		f.handler.HandleReady(ReadyRequest{PlayerID: id})
	}
	return room
}

func testQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:            uint(i + 1),
			Category:      "general",
			Text:          fmt.Sprintf("question %d", i+1),
			Options:       []string{"a", "b", "c"},
			CorrectAnswer: "a",
		}
	}
	return qs
}

func roomStatus(r *Room) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Status
}

func playerByID(r *Room, id string) models.PlayerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.findPlayer(id); p != nil {
		return p.PlayerState
	}
	return models.PlayerState{}
}

func waitUntil(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartRequiresFullRoomAndAllReady(t *testing.T) {
	f := newFixture(3, testQuestions(2))

	f.join("p1")
	f.join("p2")
	f.handler.HandleReady(ReadyRequest{PlayerID: "p1"})
	f.handler.HandleReady(ReadyRequest{PlayerID: "p2"})

	room := f.registry.FindByPlayer("p1")
	if got := roomStatus(room); got != models.GameStatusWaiting {
		t.Fatalf("room started with %d/%d players: status %q", 2, 3, got)
	}

	f.join("p3")
	if got := roomStatus(room); got != models.GameStatusWaiting {
		t.Fatalf("room started before last player was ready: status %q", got)
	}

	f.handler.HandleReady(ReadyRequest{PlayerID: "p3"})
	if got := roomStatus(room); got != models.GameStatusStarted {
		t.Fatalf("room did not start when full and all ready: status %q", got)
	}
	if f.bus.count("start-game") != 1 {
		t.Fatalf("expected exactly one start-game broadcast, got %d", f.bus.count("start-game"))
	}

	room.mu.Lock()
	startedAt := room.StartedAt
	room.mu.Unlock()
	if startedAt == nil {
		t.Fatal("startedAt not stamped on start")
	}
}

func TestFivePlayerEliminationRound(t *testing.T) {
	f := newFixture(5, testQuestions(3))
	room := f.joinAndReady("p1", "p2", "p3", "p4", "p5")

	waitUntil(t, time.Second, "first question", func() bool {
		return f.bus.count("new-question") >= 1
	})

	roomID := room.RoomID
	// p1-p3 answer correctly, p4 answers wrong, p5 never answers.
	f.handler.HandleAnswer(AnswerRequest{RoomID: roomID, PlayerID: "p1", Answer: "a"})
	f.handler.HandleAnswer(AnswerRequest{RoomID: roomID, PlayerID: "p2", Answer: "a"})
	f.handler.HandleAnswer(AnswerRequest{RoomID: roomID, PlayerID: "p3", Answer: "a"})
	f.handler.HandleAnswer(AnswerRequest{RoomID: roomID, PlayerID: "p4", Answer: "b"})

	waitUntil(t, time.Second, "round results", func() bool {
		return f.bus.count("round-results") >= 1
	})

	data, _ := f.bus.last("round-results")
	payload := data.(map[string]interface{})
	if payload["correctAnswer"] != "a" {
		t.Fatalf("round-results exposed wrong answer: %v", payload["correctAnswer"])
	}

	players := payload["players"].([]models.PlayerState)
	alive, eliminated := 0, 0
	for _, p := range players {
		if p.Eliminated {
			eliminated++
			if p.Round != 1 {
				t.Fatalf("player %s eliminated in round %d, want 1", p.ID, p.Round)
			}
			if p.Score != 0 {
				t.Fatalf("eliminated player %s has score %d", p.ID, p.Score)
			}
		} else {
			alive++
			if p.Score != 1 {
				t.Fatalf("surviving player %s has score %d, want 1", p.ID, p.Score)
			}
		}
	}
	if alive != 3 || eliminated != 2 {
		t.Fatalf("got %d alive / %d eliminated, want 3/2", alive, eliminated)
	}
}

func TestLoneSurvivorWinsAndRoomResets(t *testing.T) {
	f := newFixture(3, testQuestions(5))
	room := f.joinAndReady("p1", "p2", "p3")

	waitUntil(t, time.Second, "first question", func() bool {
		return f.bus.count("new-question") >= 1
	})

	f.handler.HandleAnswer(AnswerRequest{RoomID: room.RoomID, PlayerID: "p2", Answer: "a"})
	f.handler.HandleAnswer(AnswerRequest{RoomID: room.RoomID, PlayerID: "p1", Answer: "b"})
	f.handler.HandleAnswer(AnswerRequest{RoomID: room.RoomID, PlayerID: "p3", Answer: "c"})

	waitUntil(t, time.Second, "game over", func() bool {
		return f.bus.count("game-over") >= 1
	})

	data, _ := f.bus.last("game-over")
	payload := data.(map[string]interface{})
	winner := payload["winner"].(*models.PlayerState)
	if winner == nil || winner.ID != "p2" {
		t.Fatalf("winner = %+v, want p2", winner)
	}

	if f.stats.callCount() != 1 {
		t.Fatalf("stats recorded %d times, want exactly once", f.stats.callCount())
	}

	// Reset in place: same roster, clean state.
	waitUntil(t, time.Second, "reset to waiting", func() bool {
		return roomStatus(room) == models.GameStatusWaiting
	})
	room.mu.Lock()
	defer room.mu.Unlock()
	if len(room.Players) != 3 {
		t.Fatalf("roster shrank to %d on reset", len(room.Players))
	}
	if room.CurrentQuestionIndex != 0 || len(room.Questions) != 0 || room.StartedAt != nil {
		t.Fatalf("room not fully reset: idx=%d questions=%d startedAt=%v",
			room.CurrentQuestionIndex, len(room.Questions), room.StartedAt)
	}
	for _, p := range room.Players {
		if p.Ready || p.Eliminated || p.Score != 0 || p.Answered || p.Round != 0 {
			t.Fatalf("player %s not reset: %+v", p.ID, p.PlayerState)
		}
		if p.Name == "" {
			t.Fatalf("player %s lost identity on reset", p.ID)
		}
	}
}

func TestWipeEndsGameWithoutWinner(t *testing.T) {
	f := newFixture(3, testQuestions(2))
	f.joinAndReady("p1", "p2", "p3")

	// Nobody answers: everyone is force-eliminated at the deadline.
	waitUntil(t, time.Second, "game over", func() bool {
		return f.bus.count("game-over") >= 1
	})

	data, _ := f.bus.last("game-over")
	payload := data.(map[string]interface{})
	if winner := payload["winner"].(*models.PlayerState); winner != nil {
		t.Fatalf("wipe produced winner %+v", winner)
	}
}

func TestGameEndsOnBatchExhaustion(t *testing.T) {
	f := newFixture(3, testQuestions(1))
	room := f.joinAndReady("p1", "p2", "p3")

	waitUntil(t, time.Second, "first question", func() bool {
		return f.bus.count("new-question") >= 1
	})
	for _, id := range []string{"p1", "p2", "p3"} {
		f.handler.HandleAnswer(AnswerRequest{RoomID: room.RoomID, PlayerID: id, Answer: "a"})
	}

	// All three survive round one, but the batch is spent.
	waitUntil(t, time.Second, "game over", func() bool {
		return f.bus.count("game-over") >= 1
	})

	if got := f.bus.count("new-question"); got != 1 {
		t.Fatalf("asked %d questions from a 1-question batch", got)
	}

	data, _ := f.bus.last("game-over")
	winner := data.(map[string]interface{})["winner"].(*models.PlayerState)
	if winner == nil || winner.ID != "p1" {
		t.Fatalf("winner = %+v, want first surviving player p1", winner)
	}
}

func TestEngineTerminatesWithinBatchLength(t *testing.T) {
	batch := testQuestions(4)
	f := newFixture(3, batch)
	room := f.joinAndReady("p1", "p2", "p3")

	// Everyone always answers correctly: the game must still end once the
	// batch runs out.
	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := 0
		for f.bus.count("game-over") == 0 {
			if n := f.bus.count("new-question"); n > seen {
				seen = n
				for _, id := range []string{"p1", "p2", "p3"} {
					f.handler.HandleAnswer(AnswerRequest{RoomID: room.RoomID, PlayerID: id, Answer: "a"})
				}
			}
			time.Sleep(2 * time.Millisecond)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("round loop did not terminate")
	}

	if got := f.bus.count("new-question"); got > len(batch) {
		t.Fatalf("asked %d questions from a %d-question batch", got, len(batch))
	}
}

func TestStaleTimerAfterResetIsNoop(t *testing.T) {
	f := newFixture(3, testQuestions(3))
	room := f.joinAndReady("p1", "p2", "p3")

	waitUntil(t, time.Second, "first question", func() bool {
		return f.bus.count("new-question") >= 1
	})

	room.mu.Lock()
	staleGen := room.generation
	room.resetInPlace()
	room.mu.Unlock()

	before := f.bus.count("round-results")
	f.engine.closeRound(room, staleGen)
	f.engine.startRound(room, staleGen)

	if got := f.bus.count("round-results"); got != before {
		t.Fatalf("stale timer scored a reset room")
	}
	if got := roomStatus(room); got != models.GameStatusWaiting {
		t.Fatalf("stale timer moved reset room to %q", got)
	}
}
