package corpus

// Status tracks whether the remote index is ready to answer searches.
type Status int

const (
	Uninitialized Status = iota
	Initializing
	Ready
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// User-facing messages.
const (
	MsgInitializing   = "Initializing data..."
	MsgInitFailed     = "Failed to initialize data"
	MsgInitInFlight   = "Initialization already in progress"
	MsgNameRequired   = "Please enter a restaurant name"
	MsgRatingNegative = "Rating count must be zero or greater"
	MsgAdding         = "Adding restaurant..."
	MsgAdded          = "Restaurant added successfully"
	MsgAddFailed      = "Failed to add restaurant"
	MsgAddInFlight    = "A restaurant is already being added"
	MsgLoadFailed     = "Failed to load restaurants"
)
