package report

// CellKind discriminates the cell payload.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellLink
)

// NumFmtThousands is the number-format hint for count cells.
const NumFmtThousands = "#,##0"

// Cell is one sheet cell: string, number, or styled hyperlink. The sink is
// responsible for turning format hints into actual workbook styles.
type Cell struct {
	Kind         CellKind `json:"kind"`
	String       string   `json:"string,omitempty"`
	Number       float64  `json:"number,omitempty"`
	LinkText     string   `json:"link_text,omitempty"`
	LinkURL      string   `json:"link_url,omitempty"`
	NumberFormat string   `json:"number_format,omitempty"`
}

// Str builds a string cell.
func Str(s string) Cell {
	return Cell{Kind: CellString, String: s}
}

// Num builds a plain number cell.
func Num(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v}
}

// Count builds a number cell with thousands formatting.
func Count(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v, NumberFormat: NumFmtThousands}
}

// Link builds a clickable hyperlink cell.
func Link(text, url string) Cell {
	return Cell{Kind: CellLink, LinkText: text, LinkURL: url}
}

// Empty builds an empty cell.
func Empty() Cell {
	return Cell{Kind: CellEmpty}
}

// RowStyle carries per-row style hints.
type RowStyle struct {
	Bold      bool    `json:"bold,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	FontColor string  `json:"font_color,omitempty"` // ARGB
	FillColor string  `json:"fill_color,omitempty"` // ARGB
	Centered  bool    `json:"centered,omitempty"`
}

// Row is one ordered sequence of cells plus style hints.
type Row struct {
	Cells []Cell   `json:"cells"`
	Style RowStyle `json:"style,omitempty"`
}

// Sheet is the sink-facing report unit: ordered rows plus column-width
// hints. Produced once, never mutated after handoff to the workbook sink.
type Sheet struct {
	Name         string    `json:"name"`
	Rows         []Row     `json:"rows"`
	ColumnWidths []float64 `json:"column_widths,omitempty"`
}

// AddRow appends a plain row.
func (s *Sheet) AddRow(cells ...Cell) {
	s.Rows = append(s.Rows, Row{Cells: cells})
}

// AddStyledRow appends a row with style hints.
func (s *Sheet) AddStyledRow(style RowStyle, cells ...Cell) {
	s.Rows = append(s.Rows, Row{Cells: cells, Style: style})
}

// AddBlankRow appends a spacer row.
func (s *Sheet) AddBlankRow() {
	s.Rows = append(s.Rows, Row{})
}

func strRow(values ...string) []Cell {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Str(v)
	}
	return cells
}
