package render

// Figure is a Plotly figure as passed to Plotly.newPlot in the browser.
type Figure struct {
	Data   []Trace        `json:"data"`
	Layout Layout         `json:"layout"`
	Config map[string]any `json:"config,omitempty"`
}

// Trace covers the scatter and pie attributes the dashboard uses.
type Trace struct {
	Type          string     `json:"type"`
	Mode          string     `json:"mode,omitempty"`
	Name          string     `json:"name,omitempty"`
	X             []string   `json:"x,omitempty"`
	Y             []*float64 `json:"y,omitempty"`
	Labels        []string   `json:"labels,omitempty"`
	Values        []int      `json:"values,omitempty"`
	Line          *Line      `json:"line,omitempty"`
	Marker        *Marker    `json:"marker,omitempty"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
	HoverInfo     string     `json:"hoverinfo,omitempty"`
	TextInfo      string     `json:"textinfo,omitempty"`
	TextPosition  string     `json:"textposition,omitempty"`
	Sort          *bool      `json:"sort,omitempty"`
	Direction     string     `json:"direction,omitempty"`
	ConnectGaps   *bool      `json:"connectgaps,omitempty"`
}

type Line struct {
	Color string `json:"color,omitempty"`
}

type Marker struct {
	Size   int      `json:"size,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

type Layout struct {
	Title      string  `json:"title,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	ShowLegend bool    `json:"showlegend"`
	HoverMode  string  `json:"hovermode,omitempty"`
	Margin     *Margin `json:"margin,omitempty"`
	Height     int     `json:"height,omitempty"`
}

type Axis struct {
	Title      string    `json:"title,omitempty"`
	Type       string    `json:"type,omitempty"`
	TickFormat string    `json:"tickformat,omitempty"`
	Range      []float64 `json:"range,omitempty"`
	TickVals   []float64 `json:"tickvals,omitempty"`
	TickText   []string  `json:"ticktext,omitempty"`
}

type Margin struct {
	T int `json:"t"`
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
}

func boolPtr(v bool) *bool { return &v }
