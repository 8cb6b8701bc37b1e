// Package workflow implements the workflow protocol on top of a flowbus.Bus.
//
// Each call to Protocol.Execute starts one execution:
//
//  1. A registration id is generated and the execution subscribes, under
//     that id, to WF.<name>.STATE.CHANGE.
//  2. WF.<name>.INIT and then WF.<name>.SUBMIT are published, each carrying
//     an Envelope with the registration id, workflow name, event type, and
//     the caller's params as body.
//  3. Every STATE.CHANGE is classified by its value: a success state ends
//     the execution and calls OnSuccess with the inner event data, an error
//     state ends it and calls OnError, anything else is reported to
//     OnProgress and the execution keeps waiting.
//
// Ending an execution always removes its subscription, exactly once, before
// the terminal callback runs. Cancel ends it without any callback. Nothing
// times out on its own: an execution whose workflow never reports a terminal
// state waits until it is cancelled.
//
// Handlers that implement a workflow subscribe to INIT or SUBMIT, do their
// work off the bus, and report back by publishing STATE.CHANGE:
//
//	bus.Publish(ctx, workflow.StateChangeTopic("checkout"), workflow.StateChange{
//	    Value: "success",
//	    Event: &workflow.StateEvent{Data: receipt},
//	})
package workflow
