package fsharpstyle

// DuplicatePolicy decides what Compose does when a tag is requested twice.
type DuplicatePolicy int

const (
	DuplicateSkip   DuplicatePolicy = iota // emit a tag's rules once, at first request
	DuplicateRepeat                        // emit them again at every request
)

// UnknownHeadingPolicy decides what the markdown Importer does with a heading
// that names no tag.
type UnknownHeadingPolicy int

const (
	UnknownDrop UnknownHeadingPolicy = iota // close the current section and skip its bullets
	UnknownFail                             // return an *UnknownHeadingError
)
