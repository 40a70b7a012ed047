package store

// Status is the durable lifecycle state of a container. Only two states are
// persisted; everything transient lives in the OS process table.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// ContainerConfig is the persisted record for one container, keyed by name.
type ContainerConfig struct {
	// ID is assigned at creation and never changes or gets reused.
	ID     string `json:"id"`
	Name   string `json:"name"`
	Script string `json:"script"`

	// Runtime is the tag detected at creation time and stored verbatim;
	// it is never re-derived.
	Runtime string `json:"runtime"`

	Status Status `json:"status"`

	// PortMapping is the host:container mapping set on each start. Stop
	// leaves it stale on purpose; callers must not rely on it being
	// cleared.
	PortMapping string `json:"port_mapping,omitempty"`
}
