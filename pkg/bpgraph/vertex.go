package bpgraph

// VertexMap is a bidirectional mapping between breakpoint positions and dense
// vertex ids assigned in first-seen order.
type VertexMap struct {
	positions []int64
	ids       map[int64]int
}

// NewVertexMap deduplicates positions into vertex ids 0..n-1.
func NewVertexMap(positions []int64) *VertexMap {
	vm := &VertexMap{ids: make(map[int64]int, len(positions))}
	for _, p := range positions {
		vm.Add(p)
	}
	return vm
}

// Add returns the id for pos, assigning the next id if pos is new.
func (vm *VertexMap) Add(pos int64) int {
	if id, ok := vm.ids[pos]; ok {
		return id
	}
	id := len(vm.positions)
	vm.ids[pos] = id
	vm.positions = append(vm.positions, pos)
	return id
}

// ID returns the vertex id of pos.
func (vm *VertexMap) ID(pos int64) (int, bool) {
	id, ok := vm.ids[pos]
	return id, ok
}

// Position returns the breakpoint position of vertex id.
func (vm *VertexMap) Position(id int) int64 {
	return vm.positions[id]
}

// Positions maps vertex ids back to breakpoint positions, preserving order.
func (vm *VertexMap) Positions(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = vm.positions[id]
	}
	return out
}

// Len returns the number of vertices.
func (vm *VertexMap) Len() int {
	return len(vm.positions)
}
