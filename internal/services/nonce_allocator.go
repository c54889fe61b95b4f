package services

import (
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Phase separates the sub-steps of a run inside the sequence key space.
type Phase uint8

const (
	PhaseDeploy Phase = iota + 1
	PhaseApprovalToken
	PhaseApprovalPermit2
	PhaseSwap
	PhaseRetry
	PhaseCorrection
)

func (p Phase) String() string {
	switch p {
	case PhaseDeploy:
		return "deploy"
	case PhaseApprovalToken:
		return "approval_token"
	case PhaseApprovalPermit2:
		return "approval_permit2"
	case PhaseSwap:
		return "swap"
	case PhaseRetry:
		return "retry"
	case PhaseCorrection:
		return "correction"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

const (
	phaseShift     = 32
	timestampShift = 40
)

// Key derives the relay nonce key for one operation:
//
//	unixMillis << 40 | phase << 32 | accountIndex
//
// The low 32 bits hold the account index and the next 8 the phase, so two keys with the same
// timestamp collide only if both phase and index are equal.
func Key(timestamp time.Time, phase Phase, accountIndex uint32) *big.Int {
	key := new(big.Int).Lsh(big.NewInt(timestamp.UnixMilli()), timestampShift)
	key.Or(key, new(big.Int).Lsh(big.NewInt(int64(phase)), phaseShift))
	return key.Or(key, new(big.Int).SetUint64(uint64(accountIndex)))
}

// PhaseKeys hands out keys for one phase, all seeded with the same timestamp.
type PhaseKeys struct {
	Phase     Phase
	Timestamp time.Time
}

// Key returns the nonce key of the account at index within this phase.
func (k PhaseKeys) Key(accountIndex uint32) *big.Int {
	return Key(k.Timestamp, k.Phase, accountIndex)
}

// NonceAllocator captures phase timestamps. It keeps them strictly increasing so a phase begun
// twice within one millisecond still gets a fresh key range.
type NonceAllocator struct {
	mu       sync.Mutex
	now      func() time.Time
	lastTime int64
}

// NewNonceAllocator returns an allocator reading the given clock. A nil clock means time.Now.
func NewNonceAllocator(now func() time.Time) *NonceAllocator {
	if now == nil {
		now = time.Now
	}
	return &NonceAllocator{now: now}
}

// BeginPhase captures the timestamp all keys of the phase derive from.
func (a *NonceAllocator) BeginPhase(phase Phase) PhaseKeys {
	a.mu.Lock()
	defer a.mu.Unlock()

	ms := a.now().UnixMilli()
	if ms <= a.lastTime {
		ms = a.lastTime + 1
	}
	a.lastTime = ms

	return PhaseKeys{Phase: phase, Timestamp: time.UnixMilli(ms).UTC()}
}
