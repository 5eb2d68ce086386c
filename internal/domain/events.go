package domain

// Realtime event names pushed by the backend. The terminal only consumes them.
const (
	EventOrderCreated         = "order:created"
	EventOrderUpdated         = "order:updated"
	EventKitchenTicketCreated = "kitchen-ticket:created"
	EventKitchenTicketUpdated = "kitchen-ticket:updated"
)

// AllEvents lists every event name the terminal subscribes to.
var AllEvents = []string{
	EventOrderCreated,
	EventOrderUpdated,
	EventKitchenTicketCreated,
	EventKitchenTicketUpdated,
}
