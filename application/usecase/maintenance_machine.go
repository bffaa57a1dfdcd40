package usecase

import (
	"fmt"
	"time"

	sw "github.com/filanov/stateswitch"

	"github.com/ativus/ativus/domain"
)

// Maintenance ticket sub-states as stateswitch states.
const (
	ticketStateOpened    sw.State = sw.State(domain.TicketOpened)
	ticketStateDiagnosed sw.State = sw.State(domain.TicketDiagnosed)
	ticketStateClosed    sw.State = sw.State(domain.TicketClosed)

	TransitionDiagnose sw.TransitionType = "diagnose"
	TransitionClose    sw.TransitionType = "close"
)

// ticketSwitch adapts a MaintenanceTicket to the stateswitch interface.
type ticketSwitch struct {
	ticket *domain.MaintenanceTicket
}

func (s ticketSwitch) State() sw.State {
	return sw.State(s.ticket.State)
}

func (s ticketSwitch) SetState(state sw.State) error {
	s.ticket.State = domain.TicketState(state)
	return nil
}

type diagnoseArgs struct {
	Diagnosis        string
	EstimatedCents   int64
	PromisedReturnAt *time.Time
	Now              time.Time
}

type closeArgs struct {
	Outcome      domain.MaintenanceOutcome
	ClosingNotes string
	ActorID      string
	Now          time.Time
}

// MaintenanceMachine drives the opened -> diagnosed -> closed sub-lifecycle
// of a ticket. Closing is allowed straight from opened: a technician may
// scrap or return equipment without a formal diagnosis entry.
type MaintenanceMachine struct {
	sm sw.StateMachine
}

func NewMaintenanceMachine() *MaintenanceMachine {
	m := sw.NewStateMachine()

	m.AddTransition(sw.TransitionRule{
		TransitionType:   TransitionDiagnose,
		SourceStates:     sw.States{ticketStateOpened},
		DestinationState: ticketStateDiagnosed,
		Transition:       applyDiagnosis,
	})

	m.AddTransition(sw.TransitionRule{
		TransitionType:   TransitionClose,
		SourceStates:     sw.States{ticketStateOpened, ticketStateDiagnosed},
		DestinationState: ticketStateClosed,
		Transition:       applyClose,
	})

	return &MaintenanceMachine{sm: m}
}

func applyDiagnosis(s sw.StateSwitch, args sw.TransitionArgs) error {
	a, ok := args.(*diagnoseArgs)
	if !ok {
		return fmt.Errorf("expected diagnoseArgs, got %T", args)
	}
	ts, ok := s.(ticketSwitch)
	if !ok {
		return fmt.Errorf("expected ticketSwitch, got %T", s)
	}

	t := ts.ticket
	t.Diagnosis = a.Diagnosis
	t.EstimatedCents = a.EstimatedCents
	if a.PromisedReturnAt != nil {
		t.PromisedReturnAt = a.PromisedReturnAt
	}
	diagnosedAt := a.Now
	t.DiagnosedAt = &diagnosedAt
	return nil
}

func applyClose(s sw.StateSwitch, args sw.TransitionArgs) error {
	a, ok := args.(*closeArgs)
	if !ok {
		return fmt.Errorf("expected closeArgs, got %T", args)
	}
	ts, ok := s.(ticketSwitch)
	if !ok {
		return fmt.Errorf("expected ticketSwitch, got %T", s)
	}

	t := ts.ticket
	t.Outcome = a.Outcome
	t.ClosingNotes = a.ClosingNotes
	t.ClosedBy = a.ActorID
	closedAt := a.Now
	t.ClosedAt = &closedAt
	return nil
}

// Diagnose runs the diagnose transition. A ticket that is not in the opened
// state rejects it as an invalid transition.
func (m *MaintenanceMachine) Diagnose(t *domain.MaintenanceTicket, args *diagnoseArgs) error {
	if err := m.sm.Run(TransitionDiagnose, ticketSwitch{ticket: t}, args); err != nil {
		return fmt.Errorf("%w: ticket %s in state %s cannot be diagnosed", domain.ErrInvalidTransition, t.ID, t.State)
	}
	return nil
}

// Close runs the close transition and stamps the outcome.
func (m *MaintenanceMachine) Close(t *domain.MaintenanceTicket, args *closeArgs) error {
	if err := m.sm.Run(TransitionClose, ticketSwitch{ticket: t}, args); err != nil {
		return fmt.Errorf("%w: ticket %s in state %s cannot be closed", domain.ErrInvalidTransition, t.ID, t.State)
	}
	return nil
}
