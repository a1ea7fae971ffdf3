package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/VidyaQuest-Labs/portal/internal/dto"
	"github.com/go-playground/validator/v10"
)

// State is the single tagged state of the phone-verification flow. One
// state at a time replaces the cluster of independent flags the flow is
// usually written with, so impossible combinations cannot be expressed.
type State int

const (
	StateIdle State = iota
	StateCodeSent
	StateVerified
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCodeSent:
		return "code_sent"
	case StateVerified:
		return "verified"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

const (
	codeLength     = 6
	sendCooldown   = 60 * time.Second
	changeCooldown = 60 * time.Second
)

var (
	ErrInvalidPhone   = errors.New("phone number is not a valid international number")
	ErrInvalidState   = errors.New("action not allowed in current state")
	ErrCodeIncomplete = errors.New("code buffer is not filled")
	ErrSubmitInFlight = errors.New("a verification is already in flight")
	ErrNoChallenge    = errors.New("anti-automation challenge unavailable")
)

var validate = validator.New()

// Clock abstracts time for cooldown handling
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock
func SystemClock() Clock { return systemClock{} }

// Challenge is one solved anti-automation widget instance. The provider
// rejects reuse, so a fresh instance is required per send attempt.
type Challenge interface {
	Token(ctx context.Context) (string, error)
	Discard()
}

// ChallengeFactory mints a fresh widget instance
type ChallengeFactory func() (Challenge, error)

// Provider is the slice of the external identity provider the flow
// drives: send a code to a phone, then trade code for an identity token.
type Provider interface {
	BeginVerification(ctx context.Context, phone, challengeToken string) (verificationID string, err error)
	ConfirmCode(ctx context.Context, verificationID, code string) (identityToken string, err error)
}

// FlowController is the server side of the flow
type FlowController interface {
	CreateOrGetUser(ctx context.Context, identityToken string) (*dto.UserResponse, error)
	CompleteProfile(ctx context.Context, sessionToken string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

// Machine drives one phone-verification and profile-completion flow.
// Safe for concurrent use; a second submit while one is outstanding is
// suppressed rather than queued.
type Machine struct {
	mu sync.Mutex

	clock        Clock
	provider     Provider
	controller   FlowController
	newChallenge ChallengeFactory

	state          State
	phone          string
	code           string
	challenge      Challenge
	verificationID string
	identityToken  string
	user           *dto.UserResponse

	resendAfter       time.Time
	changeNumberAfter time.Time
	inFlight          bool
}

func NewMachine(provider Provider, controller FlowController, newChallenge ChallengeFactory, clock Clock) *Machine {
	if clock == nil {
		clock = SystemClock()
	}
	return &Machine{
		clock:        clock,
		provider:     provider,
		controller:   controller,
		newChallenge: newChallenge,
		state:        StateIdle,
	}
}

// State returns the current flow state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the authenticated user once the flow reaches Verified
func (m *Machine) User() *dto.UserResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// SetPhone records the number to verify; only meaningful while Idle
func (m *Machine) SetPhone(phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrInvalidState
	}
	m.phone = phone
	return nil
}

// SendCode transitions Idle -> CodeSent. It requires a syntactically
// valid international number and a freshly solved challenge; on provider
// failure the machine stays Idle and the caller surfaces a transient
// failure signal.
func (m *Machine) SendCode(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrInvalidState
	}
	phone := m.phone
	m.mu.Unlock()

	if err := validate.Var(phone, "required,e164"); err != nil {
		return ErrInvalidPhone
	}

	challenge, err := m.newChallenge()
	if err != nil {
		return ErrNoChallenge
	}

	challengeToken, err := challenge.Token(ctx)
	if err != nil {
		challenge.Discard()
		return ErrNoChallenge
	}

	verificationID, err := m.provider.BeginVerification(ctx, phone, challengeToken)
	if err != nil {
		challenge.Discard()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A concurrent reset while the send was in flight wins.
	if m.state != StateIdle || m.phone != phone {
		challenge.Discard()
		return ErrInvalidState
	}

	now := m.clock.Now()
	m.state = StateCodeSent
	m.challenge = challenge
	m.verificationID = verificationID
	m.code = ""
	m.resendAfter = now.Add(sendCooldown)
	m.changeNumberAfter = now.Add(changeCooldown)

	return nil
}

// SetCode replaces the code buffer; returns true when the buffer holds a
// full code and is ready to submit.
func (m *Machine) SetCode(code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCodeSent {
		return false, ErrInvalidState
	}
	m.code = code
	return len(code) == codeLength, nil
}

// ResendRemaining reports how long the resend action stays disabled
func (m *Machine) ResendRemaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return remaining(m.clock.Now(), m.resendAfter)
}

// ChangeNumberRemaining reports how long the change-number action stays
// disabled
func (m *Machine) ChangeNumberRemaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return remaining(m.clock.Now(), m.changeNumberAfter)
}

func remaining(now, deadline time.Time) time.Duration {
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Resend transitions CodeSent -> Idle so a new code can be requested.
// While the cooldown runs it is a no-op and reports false. The widget
// instance is discarded; the next send attempt needs a fresh one.
func (m *Machine) Resend() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCodeSent {
		return false
	}
	if m.clock.Now().Before(m.resendAfter) {
		return false
	}

	m.backToIdleLocked(true)
	return true
}

// ChangeNumber transitions CodeSent -> Idle and clears the phone so a
// different number can be entered. Same cooldown rules as Resend.
func (m *Machine) ChangeNumber() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCodeSent {
		return false
	}
	if m.clock.Now().Before(m.changeNumberAfter) {
		return false
	}

	m.backToIdleLocked(false)
	return true
}

// backToIdleLocked rewinds to Idle. keepPhone preserves the entered
// number for a resend to the same phone.
func (m *Machine) backToIdleLocked(keepPhone bool) {
	if m.challenge != nil {
		m.challenge.Discard()
		m.challenge = nil
	}
	if !keepPhone {
		m.phone = ""
	}
	m.state = StateIdle
	m.code = ""
	m.verificationID = ""
}

// Submit transitions CodeSent -> Verified by trading the filled code
// buffer for an identity token and registering the user. Only one
// submission may be outstanding; concurrent attempts are suppressed.
// On failure the machine stays in CodeSent with the buffer intact so
// the user can correct the code and re-trigger.
func (m *Machine) Submit(ctx context.Context) (*dto.UserResponse, error) {
	m.mu.Lock()
	if m.state != StateCodeSent {
		m.mu.Unlock()
		return nil, ErrInvalidState
	}
	if m.inFlight {
		m.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if len(m.code) != codeLength {
		m.mu.Unlock()
		return nil, ErrCodeIncomplete
	}
	m.inFlight = true
	verificationID := m.verificationID
	code := m.code
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	identityToken, err := m.provider.ConfirmCode(ctx, verificationID, code)
	if err != nil {
		return nil, err
	}

	user, err := m.controller.CreateOrGetUser(ctx, identityToken)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCodeSent {
		// Reset raced the verification; drop the result.
		return nil, ErrInvalidState
	}

	m.state = StateVerified
	m.identityToken = identityToken
	m.user = user
	if m.challenge != nil {
		m.challenge.Discard()
		m.challenge = nil
	}

	return user, nil
}

// CompleteProfile transitions Verified -> Complete, the terminal state
// of this flow.
func (m *Machine) CompleteProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	m.mu.Lock()
	if m.state != StateVerified {
		m.mu.Unlock()
		return nil, ErrInvalidState
	}
	token := m.identityToken
	m.mu.Unlock()

	user, err := m.controller.CompleteProfile(ctx, token, req)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateComplete
	m.user = user

	return user, nil
}

// Reset is the escape hatch: from Idle or CodeSent it clears the phone,
// the code buffer, both cooldowns and any widget instance. Always
// permitted in those states; a Verified flow has already minted a
// session and is not rewound.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateIdle, StateCodeSent:
		m.backToIdleLocked(false)
		m.resendAfter = time.Time{}
		m.changeNumberAfter = time.Time{}
		return nil
	default:
		return ErrInvalidState
	}
}
