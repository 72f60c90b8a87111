package nota

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Estados do salvamento automático.
type State string

const (
	StateIdle   State = "idle"
	StateSaving State = "saving"
	StateSaved  State = "saved"
)

const (
	DefaultDebounce  = 1500 * time.Millisecond
	DefaultSavedHold = 2 * time.Second

	saveTimeout = 10 * time.Second
)

// Timer é o subconjunto de *time.Timer usado pelo editor.
type Timer interface {
	Stop() bool
}

// Clock permite controlar o tempo nos testes.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock usa o relógio real.
var SystemClock Clock = systemClock{}

// Saver é o que o editor precisa para ler e gravar anotações.
type Saver interface {
	Get(ctx context.Context, id uuid.UUID) (*Nota, error)
	Save(ctx context.Context, id uuid.UUID, conteudo string) (*Nota, error)
}

// Snapshot é o estado visível do editor.
type Snapshot struct {
	NotaID     *uuid.UUID `json:"nota_id,omitempty"`
	Conteudo   string     `json:"conteudo"`
	Estado     State      `json:"estado"`
	UltimoErro string     `json:"ultimo_erro,omitempty"`
}

// Editor mantém a anotação selecionada de uma sessão e grava as alterações
// depois de um intervalo sem digitação. Cada escrita leva a geração em que
// foi agendada; respostas de gerações antigas não alteram o estado.
// As gravações são feitas uma de cada vez, em ordem, sob saveMu.
type Editor struct {
	mu     sync.Mutex
	saveMu sync.Mutex

	saver    Saver
	clock    Clock
	debounce time.Duration
	hold     time.Duration

	notaID   uuid.UUID
	conteudo string
	pending  bool
	state    State
	gen      uint64
	lastErr  error
	lastUsed time.Time

	debounceTimer Timer
	holdTimer     Timer
}

// NewEditor cria um editor sem anotação selecionada.
func NewEditor(saver Saver, clock Clock, debounce, hold time.Duration) *Editor {
	if clock == nil {
		clock = SystemClock
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if hold <= 0 {
		hold = DefaultSavedHold
	}
	return &Editor{
		saver:    saver,
		clock:    clock,
		debounce: debounce,
		hold:     hold,
		state:    StateIdle,
		lastUsed: clock.Now(),
	}
}

// Snapshot devolve uma cópia do estado atual.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	s := Snapshot{Conteudo: e.conteudo, Estado: e.state}
	if e.notaID != uuid.Nil {
		id := e.notaID
		s.NotaID = &id
	}
	if e.lastErr != nil {
		s.UltimoErro = e.lastErr.Error()
	}
	return s
}

// Selected devolve a anotação aberta, uuid.Nil quando nenhuma.
func (e *Editor) Selected() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notaID
}

// Select abre outra anotação. Alterações ainda não gravadas da anotação
// anterior são gravadas antes da troca; se a gravação falhar a seleção é mantida.
func (e *Editor) Select(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	if err := e.Flush(ctx); err != nil {
		return e.Snapshot(), err
	}

	n, err := e.saver.Get(ctx, id)
	if err != nil {
		return e.Snapshot(), err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.notaID = n.ID
	e.conteudo = n.Conteudo
	e.lastUsed = e.clock.Now()
	return e.snapshotLocked(), nil
}

// Change registra o novo conteúdo e reinicia a contagem para gravar.
func (e *Editor) Change(conteudo string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.notaID == uuid.Nil {
		return e.snapshotLocked(), ErrSemSelecao
	}

	e.stopTimersLocked()
	e.gen++
	gen := e.gen

	e.conteudo = conteudo
	e.pending = true
	e.state = StateSaving
	e.lastErr = nil
	e.lastUsed = e.clock.Now()
	e.debounceTimer = e.clock.AfterFunc(e.debounce, func() { e.fire(gen) })

	return e.snapshotLocked(), nil
}

// Flush grava imediatamente alterações pendentes.
func (e *Editor) Flush(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if !e.pending {
		e.mu.Unlock()
		return nil
	}
	e.stopTimersLocked()
	e.gen++
	gen := e.gen
	id, conteudo := e.notaID, e.conteudo
	e.pending = false
	e.mu.Unlock()

	_, err := e.saver.Save(ctx, id, conteudo)
	e.complete(gen, id, err)
	if err != nil {
		// mantém o texto para nova tentativa
		e.mu.Lock()
		if gen == e.gen {
			e.pending = true
		}
		e.mu.Unlock()
	}
	return err
}

// Forget descarta a seleção se id for a anotação aberta (usada após exclusão).
func (e *Editor) Forget(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.notaID != id {
		return
	}
	e.resetLocked()
	e.notaID = uuid.Nil
	e.conteudo = ""
}

// Busy indica escrita pendente ou em andamento.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending || e.state == StateSaving
}

func (e *Editor) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}

func (e *Editor) fire(gen uint64) {
	// conteúdo lido só depois de obter saveMu, nunca grava texto mais velho
	// que o de uma escrita anterior
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if gen != e.gen || !e.pending {
		e.mu.Unlock()
		return
	}
	id, conteudo := e.notaID, e.conteudo
	e.pending = false
	e.debounceTimer = nil
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	_, err := e.saver.Save(ctx, id, conteudo)
	e.complete(gen, id, err)
}

func (e *Editor) complete(gen uint64, id uuid.UUID, err error) {
	if err != nil {
		log.Error().Err(err).Str("nota_id", id.String()).Msg("falha ao salvar anotação")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return
	}
	if err != nil {
		e.state = StateIdle
		e.lastErr = err
		return
	}
	e.state = StateSaved
	e.holdTimer = e.clock.AfterFunc(e.hold, func() { e.release(gen) })
}

func (e *Editor) release(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.gen && e.state == StateSaved {
		e.state = StateIdle
	}
}

func (e *Editor) resetLocked() {
	e.stopTimersLocked()
	e.gen++
	e.pending = false
	e.state = StateIdle
	e.lastErr = nil
}

func (e *Editor) stopTimersLocked() {
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
		e.debounceTimer = nil
	}
	if e.holdTimer != nil {
		e.holdTimer.Stop()
		e.holdTimer = nil
	}
}
