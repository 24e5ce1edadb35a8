package domain

// CommandKind classifies a user turn before the transition table is
// consulted. A closed enum matched exhaustively, rather than a string-keyed
// dispatch map, so the compiler catches unhandled kinds.
type CommandKind int

const (
	// CommandNone means the input is not a recognized side command and should
	// go through the current state's handler.
	CommandNone CommandKind = iota
	CommandGreeting
	CommandHelp
	CommandBack
	CommandCancel
	CommandAccept
	CommandRefuse
	CommandContinue
	CommandStop
	// CommandQuestion marks a free-form question to be routed to the
	// fallback responder without changing state.
	CommandQuestion
)

func (k CommandKind) String() string {
	switch k {
	case CommandNone:
		return "none"
	case CommandGreeting:
		return "greeting"
	case CommandHelp:
		return "help"
	case CommandBack:
		return "back"
	case CommandCancel:
		return "cancel"
	case CommandAccept:
		return "accept"
	case CommandRefuse:
		return "refuse"
	case CommandContinue:
		return "continue"
	case CommandStop:
		return "stop"
	case CommandQuestion:
		return "question"
	}
	return "unknown"
}
