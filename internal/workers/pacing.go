package workers

import (
	"sync/atomic"
	"time"
)

// PacingSignal guarda o delay de compasso corrente em milissegundos.
// Escrito apenas pelo monitor de saúde, lido pelo despachante.
type PacingSignal struct {
	delayMs     atomic.Int64
	lastFailure atomic.Int64 // unix ms, apenas observabilidade
}

func NewPacingSignal() *PacingSignal {
	return &PacingSignal{}
}

func (s *PacingSignal) DelayMs() int64 {
	return s.delayMs.Load()
}

func (s *PacingSignal) SetDelayMs(ms int64) {
	if ms < 0 {
		ms = 0
	}
	s.delayMs.Store(ms)
}

func (s *PacingSignal) RecordFailure(at time.Time) {
	s.lastFailure.Store(at.UnixMilli())
}

func (s *PacingSignal) LastFailure() time.Time {
	ms := s.lastFailure.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
