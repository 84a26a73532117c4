// Package status defines the one result shape every controller hands to the
// presentation layer, whatever produced it: a local validation check, the
// service, or the transport.
package status

// Kind discriminates a Report.
type Kind int

const (
	// None is the zero Report: nothing to show.
	None Kind = iota
	Pending
	Success
	Failure
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "none"
}

// Report is a user-facing outcome.
type Report struct {
	Kind    Kind
	Message string
}

func NewPending(msg string) Report { return Report{Kind: Pending, Message: msg} }
func NewSuccess(msg string) Report { return Report{Kind: Success, Message: msg} }
func NewFailure(msg string) Report { return Report{Kind: Failure, Message: msg} }

// FailureOr builds a Failure carrying msg, or fallback when msg is empty.
func FailureOr(msg, fallback string) Report {
	if msg == "" {
		msg = fallback
	}
	return NewFailure(msg)
}

// SuccessOr builds a Success carrying msg, or fallback when msg is empty.
func SuccessOr(msg, fallback string) Report {
	if msg == "" {
		msg = fallback
	}
	return NewSuccess(msg)
}

func (r Report) IsZero() bool    { return r.Kind == None }
func (r Report) Failed() bool    { return r.Kind == Failure }
func (r Report) Succeeded() bool { return r.Kind == Success }
