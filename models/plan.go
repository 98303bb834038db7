package models

// Cylinder variants (physical cylinder shapes, fixed vocabulary)
const (
	VariantDouble  = "Doppelzylinder"
	VariantHalf    = "Halbzylinder"
	VariantKnob    = "Knaufzylinder"
	VariantOutside = "Außenzylinder"
)

// Per-row technology modes (meaningful when the plan technology is mixed)
const (
	TechModeMechanical = "mechanisch"
	TechModeElectronic = "elektronisch"
)

// Door label editing modes for a row (mutually exclusive)
const (
	DoorEditDisplay = "display"   // showing the committed label
	DoorEditSelect  = "selecting" // dropdown from known door options plus "custom"
	DoorEditCustom  = "custom"    // free-text entry
)

// Default dimension placeholder (outside/inside, millimetres as free text)
const DefaultDimension = "30"

// FeatureFlags is a sparse feature-key -> enabled mapping, seeded at plan
// creation and independently editable per row
type FeatureFlags map[string]bool

// Clone returns an independent copy of the flag set
func (f FeatureFlags) Clone() FeatureFlags {
	out := make(FeatureFlags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// PlanColumn is one key group of the closing plan
type PlanColumn struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PlanRow is one door (or access point) of the closing plan
type PlanRow struct {
	ID            int64        `json:"id"`
	Position      int          `json:"pos"`
	DoorLabel     string       `json:"tuer"`
	Variant       string       `json:"typ"`
	CatalogItemID string       `json:"system_id"`
	TechMode      string       `json:"tech_mode"`
	DimOutside    string       `json:"mass_a"`
	DimInside     string       `json:"mass_i"`
	Quantity      int          `json:"anzahl"`
	Features      FeatureFlags `json:"funktionen"`
	// Assignments is index-aligned with the plan's columns: one bool per key group
	Assignments []bool `json:"matrix"`
	// DoorEditMode is transient UI state; persisted rows are always in display mode
	DoorEditMode string `json:"-"`
	// priorLabel backs out an abandoned custom-name edit
	priorLabel string
}

// BeginDoorEdit moves the row from display to selecting mode
func (r *PlanRow) BeginDoorEdit() {
	if r.DoorEditMode == DoorEditDisplay || r.DoorEditMode == "" {
		r.priorLabel = r.DoorLabel
		r.DoorEditMode = DoorEditSelect
	}
}

// BeginCustomDoorEntry moves the row from selecting to free-text entry
func (r *PlanRow) BeginCustomDoorEntry() {
	if r.DoorEditMode == DoorEditSelect {
		r.DoorEditMode = DoorEditCustom
	}
}

// CommitDoorLabel commits a label and returns to display mode. An empty label
// is rejected: the row keeps the label it had. When an edit is in progress the
// captured prior label backs out the abandoned entry.
func (r *PlanRow) CommitDoorLabel(label string) bool {
	committed := true
	if label == "" {
		committed = false
		if r.priorLabel != "" {
			r.DoorLabel = r.priorLabel
		}
	} else {
		r.DoorLabel = label
	}
	r.DoorEditMode = DoorEditDisplay
	r.priorLabel = ""
	return committed
}

// Plan is the editable doors x key-groups matrix produced after a catalog item
// is chosen. It is exclusively owned by one editing session; every mutation
// goes through the plan editor operations.
type Plan struct {
	Rows    []PlanRow    `json:"rows"`
	Columns []PlanColumn `json:"keys"`
	// nextID allocates row/column ids; unique within the plan, not necessarily sequential
	nextID int64
}

// NextID returns a fresh identifier for a row or column
func (p *Plan) NextID() int64 {
	// Recover the counter after deserialization
	if p.nextID == 0 {
		for _, r := range p.Rows {
			if r.ID >= p.nextID {
				p.nextID = r.ID + 1
			}
		}
		for _, c := range p.Columns {
			if c.ID >= p.nextID {
				p.nextID = c.ID + 1
			}
		}
		if p.nextID == 0 {
			p.nextID = 1
		}
	}
	id := p.nextID
	p.nextID++
	return id
}

// RowByID returns the row with the given id, or nil
func (p *Plan) RowByID(id int64) *PlanRow {
	for i := range p.Rows {
		if p.Rows[i].ID == id {
			return &p.Rows[i]
		}
	}
	return nil
}

// ColumnByID returns the column with the given id, or nil
func (p *Plan) ColumnByID(id int64) *PlanColumn {
	for i := range p.Columns {
		if p.Columns[i].ID == id {
			return &p.Columns[i]
		}
	}
	return nil
}

// Resequence recomputes contiguous 1..N positions after structural changes
func (p *Plan) Resequence() {
	for i := range p.Rows {
		p.Rows[i].Position = i + 1
	}
}

// CheckShape verifies the matrix invariant: every row carries exactly one
// assignment per column
func (p *Plan) CheckShape() bool {
	for _, r := range p.Rows {
		if len(r.Assignments) != len(p.Columns) {
			return false
		}
	}
	return true
}

// IsValidVariant checks if the value is a known cylinder variant
func IsValidVariant(variant string) bool {
	switch variant {
	case VariantDouble, VariantHalf, VariantKnob, VariantOutside:
		return true
	}
	return false
}

// IsValidTechMode checks if the value is a known per-row technology mode
func IsValidTechMode(mode string) bool {
	return mode == TechModeMechanical || mode == TechModeElectronic
}

// CylinderVariants returns the fixed variant vocabulary in display order
func CylinderVariants() []string {
	return []string{VariantDouble, VariantHalf, VariantKnob, VariantOutside}
}
