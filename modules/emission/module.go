package emission

import (
	"time"

	tg "github.com/m3rciful/econbot/core/telegram"
	"github.com/m3rciful/econbot/core/telegram/commands"
	"github.com/m3rciful/econbot/core/telegram/middleware"
	"github.com/m3rciful/econbot/core/telegram/state"
	"github.com/m3rciful/econbot/modules/match"
)

// stateStrings adapts the typed session manager to the string-based
// middleware contract.
type stateStrings struct{ m state.Manager[Form] }

func (s stateStrings) GetState(userID int64) string { return string(s.m.GetState(userID)) }

// ModuleConfig assembles the emission module.
type ModuleConfig struct {
	Store     match.Store
	AdminID   int64
	Resources []string
	Location  *time.Location
}

// Module owns the emission workflow, the admin gate and their Telegram wiring.
type Module struct {
	workflow *Workflow
	gate     *Gate
	notifier *Notifier
	adminID  int64
}

// NewModule builds the emission module on top of a match store.
func NewModule(cfg ModuleConfig) *Module {
	notifier := NewNotifier(cfg.AdminID)
	sessions := state.NewMemoryManager[Form]()

	workflow := NewWorkflow(Config{
		Sessions:  sessions,
		Store:     cfg.Store,
		Messenger: notifier,
		Resources: cfg.Resources,
		Location:  cfg.Location,
	})

	return &Module{
		workflow: workflow,
		gate:     NewGate(cfg.Store, notifier),
		notifier: notifier,
		adminID:  cfg.AdminID,
	}
}

// Notifier returns the outbound messenger, bound to the bot at startup.
func (m *Module) Notifier() *Notifier { return m.notifier }

// Workflow returns the form workflow, mainly for tests and diagnostics.
func (m *Module) Workflow() *Workflow { return m.workflow }

// Gate returns the admin approval gate.
func (m *Module) Gate() *Gate { return m.gate }

// Sessions exposes the FSM manager for the text router.
func (m *Module) Sessions() state.Manager[Form] { return m.workflow.Sessions() }

// Register wires the module's commands, callbacks and FSM handlers into the
// registry and session manager.
func (m *Module) Register(reg *tg.Registry) {
	reg.RegisterCommand("/emission", commands.Command{
		Handler:     m.onEmissionCommand,
		Description: "Request a currency emission",
	})

	sessions := m.workflow.Sessions()

	// Resource buttons are only meaningful while the form waits for one;
	// stale taps on old keyboards are dropped.
	inChooseState := middleware.State(stateStrings{m: sessions}, string(StateChooseResource))

	_ = reg.RegisterCallback(CallbackStart, m.onStart)
	_ = reg.RegisterCallback(CallbackResource, inChooseState(m.onResource))
	_ = reg.RegisterCallback(CallbackConfirm, m.onConfirm)
	_ = reg.RegisterCallback(CallbackRestart, m.onRestart)
	_ = reg.RegisterCallback(CallbackApprove, m.onApprove)
	_ = reg.RegisterCallback(CallbackReject, m.onReject)

	for _, st := range []state.State{
		StateCurrencyName,
		StateTicker,
		StateChooseResource,
		StateExchangeRate,
		StateCapitalization,
		StateReview,
	} {
		sessions.RegisterHandler(st, m.onFormText)
	}
}
