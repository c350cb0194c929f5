package domain

// AssignmentEvent is an action that moves an assignment between states.
type AssignmentEvent string

const (
	EventAccept        AssignmentEvent = "accept"
	EventReject        AssignmentEvent = "reject"
	EventRequestCancel AssignmentEvent = "request_cancel"
	EventApproveCancel AssignmentEvent = "approve_cancel"
	EventRejectCancel  AssignmentEvent = "reject_cancel"
)

// Transition defines a valid state change: an event moves an assignment from
// Src to Dst.
type Transition struct {
	Event AssignmentEvent
	Src   AssignmentStatus
	Dst   AssignmentStatus
}

// AssignmentTransitions is the complete assignment state machine. Anything
// not listed here is an invalid transition.
var AssignmentTransitions = []Transition{
	{Event: EventAccept, Src: AssignmentPending, Dst: AssignmentAccepted},
	{Event: EventReject, Src: AssignmentPending, Dst: AssignmentRejected},
	{Event: EventRequestCancel, Src: AssignmentAccepted, Dst: AssignmentCancellationRequested},
	{Event: EventApproveCancel, Src: AssignmentCancellationRequested, Dst: AssignmentCancelled},
	{Event: EventRejectCancel, Src: AssignmentCancellationRequested, Dst: AssignmentAccepted},
}
