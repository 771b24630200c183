// Package router implements the Request Router. It is a pure decision
// function — authorization and request-shape validation only — so that
// internal/daemon, which alone holds the queue, running job, and platform
// hooks, can act on its Decision under its own single mutex.
package router

import (
	"github.com/System233/poudriered/internal/policy"
	"github.com/System233/poudriered/internal/queue"
	"github.com/System233/poudriered/internal/wire"
)

// Kind identifies what the caller should do with a Decision.
type Kind int

const (
	// KindError means reply with an error frame and continue the session.
	KindError Kind = iota
	// KindOperation means the named internal operation is authorized;
	// the caller must execute it (it alone has access to the queue,
	// running job, and platform hooks an operation handler may need).
	KindOperation
	// KindEnqueue means the command (with its data sub-object) is
	// authorized and should be appended to the Execution Queue. No
	// reply is sent for an accepted enqueue.
	KindEnqueue
)

// knownOperations are the internal administrative verbs this daemon
// exposes. An operation name outside this set is replied to as
// "unknown operation" rather than silently dropped.
var knownOperations = map[string]bool{
	"quit":   true,
	"reload": true,
	"queue":  true,
	"status": true,
	"jail":   true,
	"ports":  true,
}

// Decision is the Request Router's verdict on one parsed request.
type Decision struct {
	Kind          Kind
	ErrorMessage  string
	OperationName string
	Entry         queue.Entry
}

func errorDecision(msg string) Decision {
	return Decision{Kind: KindError, ErrorMessage: msg}
}

// Route decides what to do with one parsed request against the policy
// currently active for the requesting client.
func Route(pol policy.Policy, cl policy.Client, req wire.Node) Decision {
	data, ok := req.Get("data")
	if !ok {
		return errorDecision("no data specified")
	}

	if opNode, ok := data.Get("operation"); ok {
		opName, ok := opNode.AsString()
		if !ok {
			return errorDecision("operation must be a string")
		}
		if !policy.IsOperationAllowed(pol, opName, cl) {
			return errorDecision("permission denied")
		}
		if !knownOperations[opName] {
			return errorDecision("unknown operation")
		}
		return Decision{Kind: KindOperation, OperationName: opName}
	}

	cmdNode, ok := data.Get("command")
	if !ok {
		return errorDecision("No command specified")
	}
	cmdName, ok := cmdNode.AsString()
	if !ok {
		return errorDecision("No command specified")
	}

	allowed, matchedRule := policy.IsCommandAllowed(pol, cmdName, cl)
	if !allowed && matchedRule != nil {
		if argsNode, hasArgs := data.Get("arguments"); hasArgs {
			argStr, ok := argsNode.AsString()
			if !ok {
				return errorDecision("Expecting a string for the arguments")
			}
			allowed = policy.IsArgumentsAllowed(argStr, matchedRule, cl)
		}
	}
	if !allowed {
		return errorDecision("Permission denied")
	}

	return Decision{Kind: KindEnqueue, Entry: queue.Entry{Data: data}}
}
