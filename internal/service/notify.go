// Package service provides the business logic for authentication, the user
// and item registries, and the event/RSVP record, delegating persistence to
// repository interfaces.
package service

// Notifier is told which collection changed after every successful
// mutation. The watch hub implements it; a nil Notifier disables
// notifications.
type Notifier interface {
	Broadcast(collection string)
}

// notify forwards a collection-changed notification, tolerating a nil
// Notifier.
func notify(n Notifier, collection string) {
	if n != nil {
		n.Broadcast(collection)
	}
}
