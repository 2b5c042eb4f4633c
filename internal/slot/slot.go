// Package slot describes where each template field lives in a slide and
// resolves those descriptors against a parsed document.
//
// Every query is positional (panel × section index × role), never based on
// the text a slot currently holds, so relabeled headings and arbitrary field
// content do not move a field to a different slot.
package slot

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/slidedit/internal/schema"
)

// Panel names a container of the slide.
type Panel string

const (
	PanelPage  Panel = "page" // document level, outside any panel
	PanelLeft  Panel = "left"
	PanelRight Panel = "right"
	PanelNotes Panel = "user"
)

// PanelFor maps a comparison side to its panel.
func PanelFor(side schema.Side) Panel {
	if side == schema.Right {
		return PanelRight
	}
	return PanelLeft
}

// Role is the part of a panel or section a slot addresses.
type Role int

const (
	RoleTitle Role = iota
	RoleSideLabel
	RoleHeading
	RoleBody
	RolePageNumber
	RoleSummary
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleSideLabel:
		return "side-label"
	case RoleHeading:
		return "heading"
	case RoleBody:
		return "body"
	case RolePageNumber:
		return "page-number"
	case RoleSummary:
		return "summary"
	}
	return "unknown"
}

// Template conventions.
const (
	selTitle      = "h1"
	selSection    = ".section"
	selHeading    = "h3"
	selBody       = "p"
	selSideLabel  = ".side-label .tag"
	selPageNumber = "footer .pagenum"
	selSummary    = "footer strong"
)

// Slot is the location of one value in the template.
type Slot struct {
	Field string // empty for heading slots, which carry no field
	Panel Panel
	Index int // section index within the panel, for heading and body roles
	Role  Role
}

func (s Slot) String() string {
	switch s.Role {
	case RoleHeading, RoleBody:
		return fmt.Sprintf("%s[%d].%s", s.Panel, s.Index, s.Role)
	}
	return fmt.Sprintf("%s.%s", s.Panel, s.Role)
}

// For enumerates the field slots of a schema in form order.
func For(s *schema.Schema) []Slot {
	slots := []Slot{
		{Field: schema.FieldTitle, Panel: PanelPage, Role: RoleTitle},
		{Field: schema.FieldLeftLabel, Panel: PanelLeft, Role: RoleSideLabel},
		{Field: schema.FieldRightLabel, Panel: PanelRight, Role: RoleSideLabel},
	}
	for _, side := range schema.Sides {
		for i, topic := range schema.Topics {
			slots = append(slots, Slot{
				Field: schema.SectionField(side, topic),
				Panel: PanelFor(side),
				Index: i,
				Role:  RoleBody,
			})
		}
	}
	if s.HasNotes {
		slots = append(slots, Slot{Field: schema.FieldUserNotes, Panel: PanelNotes, Index: 0, Role: RoleBody})
	}
	if s.HasFooterFields {
		slots = append(slots,
			Slot{Field: schema.FieldPageNumber, Panel: PanelPage, Role: RolePageNumber},
			Slot{Field: schema.FieldFooterSummary, Panel: PanelPage, Role: RoleSummary},
		)
	}
	return slots
}

// Heading returns the heading slot of section index in a panel.
func Heading(p Panel, index int) Slot {
	return Slot{Panel: p, Index: index, Role: RoleHeading}
}

// PanelSelection returns the first element of a panel, or an empty selection.
func PanelSelection(doc *goquery.Document, p Panel) *goquery.Selection {
	return doc.Find(".panel." + string(p)).First()
}

// Sections returns the section elements of a panel in document order.
func Sections(doc *goquery.Document, p Panel) *goquery.Selection {
	return PanelSelection(doc, p).Find(selSection)
}

// Resolve returns the element a slot addresses, or nil if the document
// does not contain it.
func Resolve(doc *goquery.Document, s Slot) *html.Node {
	var sel *goquery.Selection
	switch s.Role {
	case RoleTitle:
		sel = doc.Find(selTitle)
	case RoleSideLabel:
		sel = PanelSelection(doc, s.Panel).Find(selSideLabel)
	case RoleHeading:
		sel = Sections(doc, s.Panel).Eq(s.Index).Find(selHeading)
	case RoleBody:
		sel = Sections(doc, s.Panel).Eq(s.Index).Find(selBody)
	case RolePageNumber:
		sel = doc.Find(selPageNumber)
	case RoleSummary:
		sel = doc.Find(selSummary)
	default:
		return nil
	}
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}
