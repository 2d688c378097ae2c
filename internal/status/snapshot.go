// internal/status/snapshot.go
package status

// Snapshot is the link status delivered to status writers.
// It carries no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16 `json:"health"`
	LastErrorCode  uint16 `json:"last_error_code"`
	SecondsInError uint16 `json:"seconds_in_error"`
}

// RecordSample applies a successful poll. Reports whether anything changed.
func (s *Snapshot) RecordSample() bool {
	changed := false
	if s.Health != HealthOK {
		s.Health = HealthOK
		changed = true
	}
	// Reset last error code and seconds-in-error on recovery.
	if s.LastErrorCode != 0 {
		s.LastErrorCode = 0
		changed = true
	}
	if s.SecondsInError != 0 {
		s.SecondsInError = 0
		changed = true
	}
	return changed
}

// RecordError applies a failed poll or command.
// SecondsInError is advanced by Tick only.
func (s *Snapshot) RecordError(code uint16) bool {
	changed := false
	if s.Health != HealthError {
		s.Health = HealthError
		changed = true
	}
	if s.LastErrorCode != code {
		s.LastErrorCode = code
		changed = true
	}
	return changed
}

// RecordDisabled marks polling as stopped on purpose.
func (s *Snapshot) RecordDisabled() bool {
	if s.Health == HealthDisabled {
		return false
	}
	s.Health = HealthDisabled
	return true
}

// Tick advances SecondsInError by one while not OK or disabled.
// Saturates at MaxSecondsInError.
func (s *Snapshot) Tick() bool {
	if s.Health == HealthOK || s.Health == HealthDisabled {
		return false
	}
	if s.SecondsInError >= MaxSecondsInError {
		return false
	}
	s.SecondsInError++
	return true
}
