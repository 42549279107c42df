package parse

import "strings"

const senderSep = ": "

// MessageKind is either AuthoredMessage or Notification.
type MessageKind interface {
	isMessageKind()
}

type AuthoredMessage struct {
	Sender string
	Body   string
}

type Notification struct {
	Body string
}

func (AuthoredMessage) isMessageKind() {}
func (Notification) isMessageKind()    {}

// Classify splits body at the first ": ". Later ": " separators in the
// remainder are collapsed to single spaces unless preserveColons is set.
func Classify(body string, preserveColons bool) MessageKind {
	sender, rest, ok := strings.Cut(body, senderSep)
	if !ok || sender == "" {
		return Notification{Body: body}
	}
	if !preserveColons && strings.Contains(rest, senderSep) {
		rest = strings.Join(strings.Split(rest, senderSep), " ")
	}
	return AuthoredMessage{Sender: sender, Body: rest}
}
