package graph

// StateSchema defines the initial state and how a node's update is merged
// into the current state.
type StateSchema[S any] interface {
	// Init returns the initial state.
	Init() S

	// Update merges the new state into the current state.
	Update(current, update S) (S, error)
}

// StructSchema implements StateSchema for struct states using a merge function.
type StructSchema[S any] struct {
	InitialValue S
	MergeFunc    func(current, update S) (S, error)
}

var _ StateSchema[struct{}] = (*StructSchema[struct{}])(nil)

// NewStructSchema creates a new StructSchema. A nil merge function replaces
// the current state with the update.
//
// Example:
//
//	schema := graph.NewStructSchema(State{}, func(current, update State) (State, error) {
//	    current.Messages = append(current.Messages, update.Messages...)
//	    return current, nil
//	})
func NewStructSchema[S any](initial S, merge func(current, update S) (S, error)) *StructSchema[S] {
	if merge == nil {
		merge = OverwriteStructMerge[S]
	}
	return &StructSchema[S]{
		InitialValue: initial,
		MergeFunc:    merge,
	}
}

// Init returns the initial value.
func (s *StructSchema[S]) Init() S {
	return s.InitialValue
}

// Update merges the update into the current state.
func (s *StructSchema[S]) Update(current, update S) (S, error) {
	if s.MergeFunc == nil {
		return update, nil
	}
	return s.MergeFunc(current, update)
}

// OverwriteStructMerge replaces the current state with the update.
func OverwriteStructMerge[S any](_, update S) (S, error) {
	return update, nil
}
