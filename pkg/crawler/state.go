package crawler

// State is a step of the crawl loop
type State string

const (
	StateInit          State = "INIT"
	StateFetching      State = "FETCHING"
	StateExtracting    State = "EXTRACTING"
	StateWriting       State = "WRITING"
	StateCheckpointing State = "CHECKPOINTING"
	StateDone          State = "DONE"
	StatePaused        State = "PAUSED"
	StateFailed        State = "FAILED"
)

// Terminal reports whether the loop stops in s
func (s State) Terminal() bool {
	return s == StateDone || s == StatePaused || s == StateFailed
}
