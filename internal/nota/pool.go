package nota

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EditorPool guarda um editor por sessão.
type EditorPool struct {
	mu      sync.Mutex
	editors map[string]*Editor

	saver    Saver
	clock    Clock
	debounce time.Duration
	hold     time.Duration
	idleTTL  time.Duration
}

// NewEditorPool cria o pool; editores sem uso por idleTTL são descartados em Sweep.
func NewEditorPool(saver Saver, clock Clock, debounce, hold, idleTTL time.Duration) *EditorPool {
	if clock == nil {
		clock = SystemClock
	}
	return &EditorPool{
		editors:  make(map[string]*Editor),
		saver:    saver,
		clock:    clock,
		debounce: debounce,
		hold:     hold,
		idleTTL:  idleTTL,
	}
}

// Get devolve o editor da sessão, criando se necessário.
func (p *EditorPool) Get(session string) *Editor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.editors[session]; ok {
		return e
	}
	e := NewEditor(p.saver, p.clock, p.debounce, p.hold)
	p.editors[session] = e
	return e
}

// Forget remove a anotação excluída de todos os editores que a tinham aberta.
func (p *EditorPool) Forget(id uuid.UUID) {
	p.mu.Lock()
	editors := make([]*Editor, 0, len(p.editors))
	for _, e := range p.editors {
		editors = append(editors, e)
	}
	p.mu.Unlock()

	for _, e := range editors {
		e.Forget(id)
	}
}

// Drop grava o que estiver pendente e remove o editor da sessão.
func (p *EditorPool) Drop(ctx context.Context, session string) error {
	p.mu.Lock()
	e, ok := p.editors[session]
	delete(p.editors, session)
	p.mu.Unlock()

	if !ok {
		return nil
	}
	return e.Flush(ctx)
}

// Sweep descarta editores ociosos e devolve quantos saíram.
func (p *EditorPool) Sweep(ctx context.Context) int {
	if p.idleTTL <= 0 {
		return 0
	}
	cutoff := p.clock.Now().Add(-p.idleTTL)

	p.mu.Lock()
	var stale []*Editor
	for session, e := range p.editors {
		if e.Busy() || e.idleSince().After(cutoff) {
			continue
		}
		stale = append(stale, e)
		delete(p.editors, session)
	}
	p.mu.Unlock()

	for _, e := range stale {
		if err := e.Flush(ctx); err != nil {
			log.Warn().Err(err).Msg("falha ao gravar anotação de editor ocioso")
		}
	}
	return len(stale)
}

// Len devolve o número de editores ativos.
func (p *EditorPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.editors)
}

// Close grava tudo que estiver pendente; usado no desligamento.
func (p *EditorPool) Close(ctx context.Context) {
	p.mu.Lock()
	editors := p.editors
	p.editors = make(map[string]*Editor)
	p.mu.Unlock()

	for session, e := range editors {
		if err := e.Flush(ctx); err != nil {
			log.Error().Err(err).Str("sessao", session).Msg("falha ao gravar anotação no desligamento")
		}
	}
}

// Run executa Sweep periodicamente até ctx ser cancelado.
func (p *EditorPool) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.Sweep(ctx); n > 0 {
				log.Debug().Int("editores", n).Msg("editores ociosos descartados")
			}
		}
	}
}
