package launch

// Destination enumerates logical routing targets for a child process stream.
type Destination string

const (
	// DestPassthrough inherits the wrapper's own stream unchanged.
	DestPassthrough Destination = "passthrough"
	// DestCaptureFile routes the stream into the per-job file <job id>.txt.
	DestCaptureFile Destination = "capture-file"
)

// StreamPolicy maps the child's output streams onto destinations. Declaring
// the routing as data keeps it reviewable instead of being implied by
// redirection order at the call site.
type StreamPolicy struct {
	Stdout Destination
	Stderr Destination
}

// DefaultStreamPolicy passes stdout through to the caller and captures
// stderr to the job's log file.
func DefaultStreamPolicy() StreamPolicy {
	return StreamPolicy{Stdout: DestPassthrough, Stderr: DestCaptureFile}
}
