package storage

import "errors"

// Command is a mutation queued by a component and applied by the dispatcher
// after the component returns.
type Command func(s *Storage) error

// Defer queues cmd.
func (s *Storage) Defer(cmd Command) {
	s.deferred = append(s.deferred, cmd)
}

// PendingCommands returns the number of queued commands.
func (s *Storage) PendingCommands() int {
	return len(s.deferred)
}

// ApplyDeferred runs queued commands in order until the queue is empty,
// including commands queued by other commands. Failures are joined.
func (s *Storage) ApplyDeferred() error {
	var errs []error
	for len(s.deferred) > 0 {
		queue := s.deferred
		s.deferred = nil
		for _, cmd := range queue {
			if err := cmd(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
