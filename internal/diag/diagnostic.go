package diag

import "strings"

// Severity orders diagnostics; Bag.HasErrors looks for SevError and above.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var sevNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(sevNames) {
		return sevNames[s]
	}
	return "UNKNOWN"
}

// Subject names what a diagnostic is about: a scope and, optionally, one symbol in it.
type Subject struct {
	Scope  string
	Symbol string
}

// String renders the subject as "Scope.Symbol" or just the scope.
func (s Subject) String() string {
	switch {
	case s.Scope == "" && s.Symbol == "":
		return "<global>"
	case s.Symbol == "":
		return s.Scope
	case s.Scope == "":
		return s.Symbol
	}
	return s.Scope + "." + s.Symbol
}

type Note struct {
	Subject Subject
	Msg     string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  Subject
	Notes    []Note
}

// NewError and NewWarning build diagnostics for direct Bag.Add calls,
// e.g. from the loaders that run before any Reporter exists.
func NewError(code Code, subject Subject, msg string) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Subject: subject, Message: msg}
}

func NewWarning(code Code, subject Subject, msg string) Diagnostic {
	return Diagnostic{Severity: SevWarning, Code: code, Subject: subject, Message: msg}
}

// WithNote returns d with one more note.
func (d Diagnostic) WithNote(subject Subject, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Subject: subject, Msg: msg})
	return d
}

// Line renders "SEVERITY CODE subject: message" without notes.
func (d Diagnostic) Line() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	sb.WriteByte(' ')
	sb.WriteString(d.Code.ID())
	sb.WriteByte(' ')
	sb.WriteString(d.Subject.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}
