package game

import (
	"log"
	"time"

	"github.com/bdvbs4e/backtriviapp/internal/models"
)

// Engine drives rooms through the question/answer/elimination cycle with
// deadline timers. Every scheduled callback re-checks room state and the
// generation it was armed under, so a timer outliving a reset or delete is a
// no-op.
type Engine struct {
	registry  *Registry
	questions QuestionSource
	results   ResultStore
	records   RecordStore
	stats     StatsRecorder
	broadcast Broadcaster

	questionCount int

	// Fixed pacing policy. Overridden only by tests.
	PreGameDelay    time.Duration
	AnswerDeadline  time.Duration
	InterRoundDelay time.Duration
	DisconnectGrace time.Duration
}

func NewEngine(registry *Registry, questions QuestionSource, results ResultStore,
	records RecordStore, stats StatsRecorder, broadcast Broadcaster, questionCount int) *Engine {
	return &Engine{
		registry:      registry,
		questions:     questions,
		results:       results,
		records:       records,
		stats:         stats,
		broadcast:     broadcast,
		questionCount: questionCount,

		PreGameDelay:    1500 * time.Millisecond,
		AnswerDeadline:  5 * time.Second,
		InterRoundDelay: 2 * time.Second,
		DisconnectGrace: 15 * time.Second,
	}
}

// maybeStart fires the waiting→started transition once the room is full and
// everyone is ready.
func (e *Engine) maybeStart(room *Room) {
	room.mu.Lock()
	if room.Status != models.GameStatusWaiting || len(room.Players) != e.registry.capacity {
		room.mu.Unlock()
		return
	}
	for _, p := range room.Players {
		if !p.Ready {
			room.mu.Unlock()
			return
		}
	}

	now := time.Now()
	room.Status = models.GameStatusStarted
	room.StartedAt = &now
	gen := room.generation
	rec := room.record()
	room.mu.Unlock()

	if err := e.records.Save(rec); err != nil {
		log.Printf("engine: failed to persist start of %s: %v", room.RoomID, err)
	}
	e.broadcast.ToRoom(room.RoomID, "start-game", map[string]interface{}{"roomId": room.RoomID})
	e.emitDashboardUpdate()

	time.AfterFunc(e.PreGameDelay, func() { e.startRound(room, gen) })
}

func (e *Engine) startRound(room *Room, gen uint64) {
	room.mu.Lock()
	if room.generation != gen || room.Status != models.GameStatusStarted {
		room.mu.Unlock()
		return
	}

	if len(room.Questions) == 0 {
		batch, err := e.questions.SampleRandom(e.questionCount)
		if err != nil {
			log.Printf("engine: question fetch failed for %s: %v", room.RoomID, err)
		}
		room.Questions = batch
		room.CurrentQuestionIndex = 0
		log.Printf("engine: selected %d questions for %s", len(batch), room.RoomID)
	}

	if room.CurrentQuestionIndex >= len(room.Questions) {
		room.mu.Unlock()
		e.endGame(room, gen)
		return
	}

	question := room.Questions[room.CurrentQuestionIndex]
	for _, p := range room.Players {
		p.Answered = false
		p.answeredCorrect = false
	}
	room.answersOpen = true
	room.mu.Unlock()

	e.broadcast.ToRoom(room.RoomID, "new-question", question)
	e.broadcast.ToDashboard("question-sent", map[string]interface{}{
		"roomId": room.RoomID,
		"question": map[string]interface{}{
			"id":   question.ID,
			"text": question.Text,
		},
	})

	time.AfterFunc(e.AnswerDeadline, func() { e.closeRound(room, gen) })
}

// closeRound scores the round at deadline expiry: unanswered players are
// force-eliminated, results broadcast, and the game either ends or the next
// round is scheduled.
func (e *Engine) closeRound(room *Room, gen uint64) {
	room.mu.Lock()
	if room.generation != gen || room.Status != models.GameStatusStarted {
		room.mu.Unlock()
		return
	}

	room.answersOpen = false
	question := *room.currentQuestion()
	round := room.CurrentQuestionIndex + 1

	correctCount := 0
	for _, p := range room.Players {
		if !p.Answered && !p.Eliminated {
			p.Eliminated = true
			p.Round = round
		}
		if p.answeredCorrect {
			correctCount++
		}
	}
	alive := room.aliveCount()
	players := room.snapshotPlayers()
	room.mu.Unlock()

	e.broadcast.ToRoom(room.RoomID, "round-results", map[string]interface{}{
		"players":       players,
		"correctAnswer": question.CorrectAnswer,
	})
	e.broadcast.ToDashboard("round-results", map[string]interface{}{
		"roomId":        room.RoomID,
		"players":       players,
		"correctAnswer": question.CorrectAnswer,
	})
	e.questions.RecordOutcome(question.ID, correctCount)
	e.emitResultsUpdate(room)

	// A lone survivor wins; a wipe has no winner. Either ends the game.
	if alive <= 1 {
		e.endGame(room, gen)
		return
	}

	room.mu.Lock()
	if room.generation != gen {
		room.mu.Unlock()
		return
	}
	room.CurrentQuestionIndex++
	room.mu.Unlock()

	e.emitLobbyUpdate(room)
	time.AfterFunc(e.InterRoundDelay, func() { e.startRound(room, gen) })
}

func (e *Engine) endGame(room *Room, gen uint64) {
	room.mu.Lock()
	if room.generation != gen || room.Status != models.GameStatusStarted {
		room.mu.Unlock()
		return
	}
	room.Status = models.GameStatusFinished
	room.answersOpen = false
	winner := room.winner()
	players := room.snapshotPlayers()
	questions := room.Questions
	duration := 0
	if room.StartedAt != nil {
		duration = int(time.Since(*room.StartedAt).Seconds())
	}
	room.mu.Unlock()

	if err := e.results.UpdateGameStatus(room.RoomID, models.GameStatusFinished); err != nil {
		log.Printf("engine: failed to mark results finished for %s: %v", room.RoomID, err)
	}
	if err := e.stats.RecordFinishedGame(room.RoomID, players, questions, duration); err != nil {
		log.Printf("engine: failed to record stats for %s: %v", room.RoomID, err)
	}

	e.broadcast.ToRoom(room.RoomID, "game-over", map[string]interface{}{
		"winner":  winner,
		"players": players,
		"roomId":  room.RoomID,
	})
	e.emitResultsUpdate(room)

	// Persist the finished snapshot, then reset in place: the room identity
	// and roster survive so the same participants can re-ready for another
	// game. The waiting state reaches storage on the next lobby update.
	room.mu.Lock()
	rec := room.record()
	room.resetInPlace()
	room.mu.Unlock()

	now := time.Now()
	rec.FinishedAt = &now
	if err := e.records.Save(rec); err != nil {
		log.Printf("engine: failed to persist finish of %s: %v", room.RoomID, err)
	}
	e.emitDashboardUpdate()
}

// emitLobbyUpdate reconciles durable results for every player, then pushes a
// lobby snapshot to the room channel and a full-rooms snapshot to the
// dashboard.
func (e *Engine) emitLobbyUpdate(room *Room) {
	room.mu.Lock()
	status := room.Status
	players := room.snapshotPlayers()
	rec := room.record()
	room.mu.Unlock()

	for _, p := range players {
		result := models.PlayerResult{
			PlayerID:        p.ID,
			PlayerName:      p.Name,
			Score:           p.Score,
			Eliminated:      p.Eliminated,
			EliminatedRound: roundPtr(p.Round),
			Connected:       p.Connected,
			Ready:           p.Ready,
			GameStatus:      status,
		}
		if err := e.results.Upsert(room.RoomID, result); err != nil {
			log.Printf("engine: result upsert failed for %s/%s: %v", room.RoomID, p.ID, err)
		}
	}

	dbResults, err := e.results.QueryByRoom(room.RoomID)
	if err != nil {
		log.Printf("engine: result query failed for %s: %v", room.RoomID, err)
	}

	e.broadcast.ToRoom(room.RoomID, "lobby-update", map[string]interface{}{
		"roomId":    room.RoomID,
		"status":    status,
		"players":   players,
		"dbResults": dbResults,
	})

	if err := e.records.Save(rec); err != nil {
		log.Printf("engine: snapshot save failed for %s: %v", room.RoomID, err)
	}
	e.emitDashboardUpdate()
}

func (e *Engine) emitResultsUpdate(room *Room) {
	room.mu.Lock()
	players := room.snapshotPlayers()
	winner := room.winner()
	room.mu.Unlock()

	dbResults, err := e.results.QueryByRoom(room.RoomID)
	if err != nil {
		log.Printf("engine: result query failed for %s: %v", room.RoomID, err)
	}

	var winnerVal interface{}
	if winner != nil {
		winnerVal = winner
	} else {
		for i := range dbResults {
			if !dbResults[i].Eliminated {
				winnerVal = dbResults[i]
				break
			}
		}
	}

	e.broadcast.ToRoom(room.RoomID, "results-update", map[string]interface{}{
		"players":   players,
		"dbResults": dbResults,
		"winner":    winnerVal,
	})
	e.emitDashboardUpdate()
}

func (e *Engine) emitDashboardUpdate() {
	e.broadcast.ToDashboard("dashboard-update", map[string]interface{}{
		"rooms": e.registry.Snapshot(),
	})
}

func roundPtr(round int) *int {
	if round == 0 {
		return nil
	}
	return &round
}
