package actor

// Template selects the messages a behaviour consumes.
type Template func(msg *Message) bool

// MatchAll matches every message.
func MatchAll() Template {
	return func(*Message) bool { return true }
}

// MatchPerformative matches any of the given performatives.
func MatchPerformative(ps ...Performative) Template {
	return func(msg *Message) bool {
		for _, p := range ps {
			if msg.Performative == p {
				return true
			}
		}
		return false
	}
}

// MatchSender matches messages from the given actor.
func MatchSender(id string) Template {
	return func(msg *Message) bool {
		return msg.Sender == id
	}
}

// MatchContent matches messages whose content has type T.
func MatchContent[T any]() Template {
	return func(msg *Message) bool {
		_, ok := msg.Content.(T)
		return ok
	}
}

// And matches when every template matches.
func And(ts ...Template) Template {
	return func(msg *Message) bool {
		for _, t := range ts {
			if !t(msg) {
				return false
			}
		}
		return true
	}
}
