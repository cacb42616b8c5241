// Package store defines the persistence interfaces for tasks and users,
// along with the query types and sentinel errors they speak in. Concrete
// implementations live under internal/platform.
package store
