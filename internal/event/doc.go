// Package event provides a synchronous pub-sub event bus.
//
// The in-process store backends publish a store event after every write and
// each subscription listens on the bus to rebuild and push a full snapshot.
// The drag controller publishes drag outcomes so user interfaces can report
// them without depending on the controller.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement
//   - [Bus]: Synchronous dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Usage
//
//	bus := event.NewBus(logger)
//	id := bus.SubscribeAll(func(e event.Event) {
//	    if event.IsCollectionChange(e) {
//	        refresh()
//	    }
//	})
//	defer bus.Unsubscribe(id)
//
//	bus.Publish(event.NewTaskCreatedEvent("todos", taskID))
package event
