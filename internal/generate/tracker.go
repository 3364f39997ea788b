package generate

// Tracker collects the generated files whose fresh content differs
// from the file on disk.
type Tracker interface {
	Add(path string)
	Paths() []string
}

// NewTracker returns a RecordingTracker for dry runs and a NoopTracker
// otherwise.
func NewTracker(dryRun bool) Tracker {
	if dryRun {
		return &RecordingTracker{}
	}
	return NoopTracker{}
}

// RecordingTracker keeps every added path in order.
type RecordingTracker struct {
	paths []string
}

// Add records path.
func (t *RecordingTracker) Add(path string) {
	t.paths = append(t.paths, path)
}

// Paths returns a copy of the recorded paths.
func (t *RecordingTracker) Paths() []string {
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

// NoopTracker ignores everything.
type NoopTracker struct{}

func (NoopTracker) Add(string) {}

func (NoopTracker) Paths() []string { return nil }
