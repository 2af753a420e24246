package errors

import "fmt"

// Error codes used by the pipeline.
const (
	CodeEntrypointExt  = "entrypoint_extension"
	CodeEntrypointName = "entrypoint_name"
	CodeFileRead       = "file_read"
	CodeToolFailed     = "tool_failed"
	CodeMissingHref    = "missing_href"
	CodeMissingSrc     = "missing_src"
	CodeSerialize      = "serialize"
)

// EntrypointError reports a malformed entrypoint path. Always fatal.
func EntrypointError(path, code, reason string) *PipelineError {
	return NewFatal(ErrorTypeValidation, code, reason).WithPath(path)
}

// ReadError reports an unreadable referenced file. Always fatal.
func ReadError(path string, cause error) *PipelineError {
	return WrapFatal(cause, ErrorTypeIO, CodeFileRead, "reading referenced file").WithPath(path)
}

// ToolError reports a non-zero exit from an external tool, carrying the
// tool's diagnostic output. Always fatal, never retried.
func ToolError(tool string, cause error, diagnostics string) *PipelineError {
	msg := fmt.Sprintf("%s failed", tool)
	if diagnostics != "" {
		msg = fmt.Sprintf("%s failed: %s", tool, diagnostics)
	}
	return WrapFatal(cause, ErrorTypeTool, CodeToolFailed, msg)
}

// MissingAttr reports a tag missing its reference attribute. The node is
// skipped and left unmodified.
func MissingAttr(tag, attr string) *PipelineError {
	code := CodeMissingSrc
	if attr == "href" {
		code = CodeMissingHref
	}
	return NewRecoverable(ErrorTypeValidation, code, fmt.Sprintf("<%s> has no %s attribute", tag, attr))
}
