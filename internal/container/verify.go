package container

import "dock/internal/store"

// Report pairs a container's persisted status with its observed process
// state. The two can disagree: the engine persists requested state before
// acting on the process table, and never repairs drift on its own.
type Report struct {
	Name   string
	Status store.Status
	Alive  bool
}

// Drift reports whether the record and the process table disagree.
func (r Report) Drift() bool {
	return (r.Status == store.StatusRunning) != r.Alive
}

// Verify checks one container's record against live tag presence.
func (m *Manager) Verify(name string) (Report, error) {
	cfg, err := m.store.Load(name)
	if err != nil {
		return Report{}, err
	}
	alive, err := m.procs.AliveByTag(name)
	if err != nil {
		return Report{}, err
	}
	return Report{Name: name, Status: cfg.Status, Alive: alive}, nil
}

// VerifyAll checks every container.
func (m *Manager) VerifyAll() ([]Report, error) {
	configs, err := m.List()
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(configs))
	for _, cfg := range configs {
		alive, err := m.procs.AliveByTag(cfg.Name)
		if err != nil {
			return nil, err
		}
		reports = append(reports, Report{Name: cfg.Name, Status: cfg.Status, Alive: alive})
	}
	return reports, nil
}
