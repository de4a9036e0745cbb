package asset

import "github.com/google/uuid"

// PinCategory names the value family a pin carries.
type PinCategory string

const (
	PinExec      PinCategory = "exec"
	PinBool      PinCategory = "bool"
	PinByte      PinCategory = "byte"
	PinInt       PinCategory = "int"
	PinInt64     PinCategory = "int64"
	PinFloat     PinCategory = "float"
	PinDouble    PinCategory = "double"
	PinString    PinCategory = "string"
	PinName      PinCategory = "name"
	PinText      PinCategory = "text"
	PinStruct    PinCategory = "struct"
	PinEnum      PinCategory = "enum"
	PinObject    PinCategory = "object"
	PinClass     PinCategory = "class"
	PinSoftObj   PinCategory = "softobject"
	PinSoftClass PinCategory = "softclass"
	PinInterface PinCategory = "interface"
	PinDelegate  PinCategory = "delegate"
	PinWildcard  PinCategory = "wildcard"
)

// ContainerKind marks a pin as carrying a container of its category.
type ContainerKind string

const (
	ContainerNone  ContainerKind = ""
	ContainerArray ContainerKind = "array"
	ContainerMap   ContainerKind = "map"
)

// PinType is the full type of a data or execution pin. For object, class,
// struct and enum categories the sub-object fields name the concrete
// definition; for maps ValueType carries the value terminal type and the
// top-level fields describe the key.
type PinType struct {
	Category      PinCategory   `json:"category"`
	SubObjectName string        `json:"sub_object_name,omitempty"`
	SubObjectPath string        `json:"sub_object_path,omitempty"`
	Container     ContainerKind `json:"container,omitempty"`
	ValueType     *PinType      `json:"value_type,omitempty"`
}

// ExecType returns the execution pin type.
func ExecType() PinType {
	return PinType{Category: PinExec}
}

// WildcardType returns the unspecified pin type.
func WildcardType() PinType {
	return PinType{Category: PinWildcard}
}

// PinDirection tells whether a pin accepts or produces values.
type PinDirection string

const (
	PinInput  PinDirection = "input"
	PinOutput PinDirection = "output"
)

// Well-known pin names on entry and result nodes.
const (
	PinNameThen        = "then"
	PinNameExecute     = "execute"
	PinNameReturnValue = "ReturnValue"
)

// Pin is a typed connection point on a node.
type Pin struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Direction PinDirection `json:"direction"`
	Type      PinType      `json:"type"`
	LinkedTo  []string     `json:"linked_to,omitempty"`
}

// NodeKind distinguishes the fixed graph markers.
type NodeKind string

const (
	NodeEntry  NodeKind = "entry"
	NodeResult NodeKind = "result"
)

// Node is one vertex of a function graph.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
	PosX int      `json:"pos_x"`
	PosY int      `json:"pos_y"`
	Pins []*Pin   `json:"pins,omitempty"`
	// GeneratedSignature carries the function name the entry node is bound
	// to; empty on other node kinds.
	GeneratedSignature string `json:"generated_signature,omitempty"`
}

// AddPin creates a pin on the node and returns it.
func (n *Node) AddPin(name string, dir PinDirection, t PinType) *Pin {
	p := &Pin{ID: uuid.NewString(), Name: name, Direction: dir, Type: t}
	n.Pins = append(n.Pins, p)
	return p
}

// FindPin returns the pin with the given name, or nil.
func (n *Node) FindPin(name string) *Pin {
	if n == nil {
		return nil
	}
	for _, p := range n.Pins {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Link is a directed connection between two pins.
type Link struct {
	FromPin string `json:"from_pin"`
	ToPin   string `json:"to_pin"`
}

// FunctionGraph is the visual body of one function: its nodes and the links
// between their pins. Graphs are created fresh per function and owned by the
// target asset.
type FunctionGraph struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes,omitempty"`
	Links []Link  `json:"links,omitempty"`
}

// NewFunctionGraph creates an empty graph named after its function.
func NewFunctionGraph(name string) *FunctionGraph {
	return &FunctionGraph{ID: uuid.NewString(), Name: name}
}

// AddNode creates a node of the given kind at a position and returns it.
func (g *FunctionGraph) AddNode(kind NodeKind, x, y int) *Node {
	n := &Node{ID: uuid.NewString(), Kind: kind, PosX: x, PosY: y}
	g.Nodes = append(g.Nodes, n)
	return n
}

// NodeOfKind returns the first node of the given kind, or nil.
func (g *FunctionGraph) NodeOfKind(kind NodeKind) *Node {
	for _, n := range g.Nodes {
		if n.Kind == kind {
			return n
		}
	}
	return nil
}

// Connect records a link between two pins and mirrors it on the pins.
func (g *FunctionGraph) Connect(from, to *Pin) {
	if from == nil || to == nil {
		return
	}
	from.LinkedTo = append(from.LinkedTo, to.ID)
	to.LinkedTo = append(to.LinkedTo, from.ID)
	g.Links = append(g.Links, Link{FromPin: from.ID, ToPin: to.ID})
}
