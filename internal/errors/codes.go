package errors

type Code string

const (
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL_ERROR"

	// Configuration and input handling
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeManifestParse    Code = "MANIFEST_PARSE_ERROR"
	CodeManifestInvalid  Code = "MANIFEST_INVALID"
	CodeSpecValidation   Code = "SPEC_VALIDATION_ERROR"
	CodePluginNotFound   Code = "PLUGIN_NOT_FOUND"

	// Reconciliation core
	CodeDependencyNotFound     Code = "DEPENDENCY_NOT_FOUND"
	CodeAmbiguousState         Code = "AMBIGUOUS_STATE"
	CodeTransport              Code = "TRANSPORT_ERROR"
	CodeUnsupportedTransition  Code = "UNSUPPORTED_TRANSITION"
	CodeImmutableFieldConflict Code = "IMMUTABLE_FIELD_CONFLICT"
	CodeComparisonError        Code = "COMPARISON_ERROR"

	// Platform access
	CodePlatformAuthError Code = "PLATFORM_AUTH_ERROR"
	CodeCLINotFound       Code = "CLI_NOT_FOUND"

	// Local journal
	CodeJournalError Code = "JOURNAL_ERROR"
)

func (c Code) String() string {
	return string(c)
}
