package client

// Cache entries collapse the server's three-value status into two: a task
// is either done or still to do. The mapping is intentionally asymmetric in
// one direction only: any server status other than completed reads as todo,
// and writing todo back always means pending.
const (
	StatusTodo = "todo"
	StatusDone = "done"
)

const (
	serverStatusPending   = "pending"
	serverStatusCompleted = "completed"
)

func toCacheStatus(serverStatus string) string {
	if serverStatus == serverStatusCompleted {
		return StatusDone
	}
	return StatusTodo
}

func toServerStatus(cacheStatus string) string {
	if cacheStatus == StatusDone {
		return serverStatusCompleted
	}
	return serverStatusPending
}
