// Package domain holds the core entities of the system (tasks and the
// users who own them) together with their validation rules. It has no
// knowledge of HTTP, storage, or any other delivery concern.
package domain
