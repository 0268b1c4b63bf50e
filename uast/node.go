package uast

// Position is a source location, reported alongside an ID in a Builder's
// location list so callers can point a diagnostic at the node that
// produced it.
type Position struct {
	Line   int
	Column int
}

// Node is anything the Builder can assign an ID to. Concrete node types
// live in this package rather than being left to query authors, since the
// Builder's contract depends on being able to inspect a node's children and
// tell declarations apart from plain expressions.
type Node interface {
	// Children returns n's direct children, in source order. A leaf
	// returns nil.
	Children() []Node

	// Declaration reports whether n introduces a named symbol, and if so,
	// the name it introduces. Declarations get a fresh symbol path and a
	// fresh postorder counter for their own children; other nodes share
	// their enclosing symbol's path and counter.
	Declaration() (name string, ok bool)

	// IsComment reports whether n is a comment. Comments are skipped
	// entirely: they are never assigned an ID and the walk never
	// descends into them.
	IsComment() bool

	Pos() Position
	NodeID() ID
	SetID(ID)
}

// Comment is skipped by the Builder; it carries no ID.
type Comment struct {
	Text     string
	Position Position
}

func (*Comment) Children() []Node                   { return nil }
func (*Comment) Declaration() (name string, ok bool) { return "", false }
func (*Comment) IsComment() bool                     { return true }
func (c *Comment) Pos() Position                     { return c.Position }
func (*Comment) NodeID() ID                          { return ID{} }
func (*Comment) SetID(ID)                            {}

// VarDecl is a leaf declaration, e.g. a variable or field.
type VarDecl struct {
	Name     string
	Position Position
	ID       ID
}

func (*VarDecl) Children() []Node                   { return nil }
func (d *VarDecl) Declaration() (name string, ok bool) { return d.Name, true }
func (*VarDecl) IsComment() bool                    { return false }
func (d *VarDecl) Pos() Position                    { return d.Position }
func (d *VarDecl) NodeID() ID                        { return d.ID }
func (d *VarDecl) SetID(id ID)                       { d.ID = id }

// ModuleVisibility is the declared visibility of a ModuleDecl.
type ModuleVisibility int

const (
	VisibilityDefault ModuleVisibility = iota
	VisibilityPrivate
	VisibilityPublic
)

// ModuleKind distinguishes a module written out by the parser from one
// synthesised by the Builder to wrap a non-modular file.
type ModuleKind int

const (
	ModuleExplicit ModuleKind = iota
	ModuleImplicit
)

// ModuleDecl is a declaration that introduces a nested symbol scope.
type ModuleDecl struct {
	Name       string
	Kind       ModuleKind
	Visibility ModuleVisibility
	Body       []Node
	Position   Position
	ID         ID
}

func (m *ModuleDecl) Children() []Node                   { return m.Body }
func (m *ModuleDecl) Declaration() (name string, ok bool) { return m.Name, true }
func (*ModuleDecl) IsComment() bool                      { return false }
func (m *ModuleDecl) Pos() Position                      { return m.Position }
func (m *ModuleDecl) NodeID() ID                          { return m.ID }
func (m *ModuleDecl) SetID(id ID)                         { m.ID = id }

// Block is a plain (non-declaring) expression with children, e.g. a
// statement list or an expression with sub-expressions. It is the stand-in
// for the many non-declaration expression kinds a real parser would
// produce; all of them are alike from the Builder's point of view.
type Block struct {
	Stmts    []Node
	Position Position
	ID       ID
}

func (b *Block) Children() []Node                   { return b.Stmts }
func (*Block) Declaration() (name string, ok bool) { return "", false }
func (*Block) IsComment() bool                      { return false }
func (b *Block) Pos() Position                      { return b.Position }
func (b *Block) NodeID() ID                          { return b.ID }
func (b *Block) SetID(id ID)                         { b.ID = id }
