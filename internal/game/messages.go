package game

import "fmt"

// MessageKind categorizes a per-empire turn message.
type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageCommandRejected
	MessageBattle
	MessageInvariant
	MessageColonize
	MessageBombing
	MessageFuel
	MessageMinefield
	MessageProduction
	MessageResearch
)

func (k MessageKind) String() string {
	switch k {
	case MessageInfo:
		return "info"
	case MessageCommandRejected:
		return "command-rejected"
	case MessageBattle:
		return "battle"
	case MessageInvariant:
		return "invariant"
	case MessageColonize:
		return "colonize"
	case MessageBombing:
		return "bombing"
	case MessageFuel:
		return "fuel"
	case MessageMinefield:
		return "minefield"
	case MessageProduction:
		return "production"
	case MessageResearch:
		return "research"
	}
	return "unknown"
}

// Message is one line of per-empire turn output, handed to the reporting
// collaborators. The engine never renders or transmits these itself.
type Message struct {
	Empire EmpireID    `json:"empire"`
	Kind   MessageKind `json:"kind"`
	Text   string      `json:"text"`
}

// Messenger collects messages during turn generation, in emission order.
type Messenger struct {
	messages []Message
}

// Addf appends a formatted message for one empire.
func (m *Messenger) Addf(empire EmpireID, kind MessageKind, format string, args ...any) {
	m.messages = append(m.messages, Message{
		Empire: empire,
		Kind:   kind,
		Text:   fmt.Sprintf(format, args...),
	})
}

// All returns every collected message in emission order.
func (m *Messenger) All() []Message { return m.messages }

// ForEmpire returns the messages addressed to one empire.
func (m *Messenger) ForEmpire(id EmpireID) []Message {
	var out []Message
	for _, msg := range m.messages {
		if msg.Empire == id {
			out = append(out, msg)
		}
	}
	return out
}
