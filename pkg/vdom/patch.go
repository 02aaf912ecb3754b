package vdom

// PatchOp is the type of a child reconciliation operation.
type PatchOp uint8

const (
	PatchUpdate  PatchOp = 0x01 // Child kept, receives new element
	PatchInsert  PatchOp = 0x02 // New child mounted
	PatchMove    PatchOp = 0x03 // Kept child changed position
	PatchReplace PatchOp = 0x04 // Same name, different type: unmount + mount
	PatchRemove  PatchOp = 0x05 // Child unmounted
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchUpdate:
		return "Update"
	case PatchInsert:
		return "Insert"
	case PatchMove:
		return "Move"
	case PatchReplace:
		return "Replace"
	case PatchRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Patch is a single child reconciliation step.
type Patch struct {
	Op    PatchOp  // Operation type
	Name  string   // Child name (id segment)
	Index int      // Position in the next list, -1 for removals
	From  int      // Position in the previous list, -1 for inserts
	Node  *Element // Next element (Update, Insert, Replace)
}
