package draft

// Status is the save state of a draft.
type Status int

const (
	StatusIdle Status = iota
	StatusDirty
	StatusSaving
	StatusSaved
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusDirty:
		return "dirty"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Section names a dirty flag.
type Section int

const (
	// SectionMeta covers the parent's descriptive fields.
	SectionMeta Section = iota
	// SectionContent covers the parent's remaining fields.
	SectionContent
	// SectionItems covers children and their items.
	SectionItems

	sectionCount
)

func (s Section) String() string {
	switch s {
	case SectionMeta:
		return "meta"
	case SectionContent:
		return "content"
	case SectionItems:
		return "items"
	default:
		return "unknown"
	}
}
