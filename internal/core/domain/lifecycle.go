package domain

// LifecycleState is a declared target condition for a resource. Every
// resource kind supports at least present and absent; kinds add
// intermediate sub-states from the set below.
type LifecycleState string

const (
	StatePresent     LifecycleState = "present"
	StateAbsent      LifecycleState = "absent"
	StateDeprecated  LifecycleState = "deprecated"
	StateEnabled     LifecycleState = "enabled"
	StateDisabled    LifecycleState = "disabled"
	StateStarted     LifecycleState = "started"
	StateUndeployed  LifecycleState = "undeployed"
	StatePublished   LifecycleState = "published"
	StateUnpublished LifecycleState = "unpublished"
	StateRevoked     LifecycleState = "revoked"
)

func (s LifecycleState) String() string {
	return string(s)
}

func (s LifecycleState) IsAbsent() bool {
	return s == StateAbsent
}

func StateSupported(states []LifecycleState, s LifecycleState) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
