package panel

// Status is the lifecycle state of a panel's loaded image.
type Status int

const (
	StatusEmpty Status = iota
	StatusLoad
	StatusLoading
	StatusLoaded
	StatusUpdate
	StatusDownloading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoad:
		return "load"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusUpdate:
		return "update"
	case StatusDownloading:
		return "downloading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// transitions gates which status changes are valid. Side effects (decode,
// warp, export) belong to the caller of each transition; this table only
// decides what is allowed. Remove (-> empty) and exception (-> error) are
// permitted from any state and handled separately.
var transitions = map[Status][]Status{
	StatusEmpty:       {StatusLoad},
	StatusLoad:        {StatusLoading},
	StatusLoading:     {StatusLoaded, StatusEmpty, StatusError},
	StatusLoaded:      {StatusUpdate, StatusLoading, StatusDownloading},
	StatusUpdate:      {StatusLoaded},
	StatusDownloading: {StatusLoaded},
	StatusError:       {},
}

// canTransition reports whether moving from one status to another is valid.
func canTransition(from, to Status) bool {
	if to == StatusEmpty || to == StatusError {
		// remove and exception are always reachable
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
