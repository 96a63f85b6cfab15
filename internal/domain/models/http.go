package models

// Requests for the signals HTTP endpoints. Defined in domain for consistency
// and reuse.

type SignalsRequest struct {
	Date string `query:"date" json:"date"`
}

type SeriesRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
	Days       int    `query:"days" json:"days" default:"0" validate:"gte=0,lte=3650"`
}

type SummaryRequest struct {
	Date string `query:"date" json:"date"`
}

type RefreshRequest struct {
	Force bool `query:"force" json:"force"`
}

// InstrumentInfo describes one instrument's coverage in the dataset.
type InstrumentInfo struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
}

// SeriesPointDTO is the wire form of a SeriesPoint. Statistics that are
// undefined in the warm-up region are rendered as nulls rather than zeroes.
type SeriesPointDTO struct {
	Instrument     string   `json:"instrument"`
	Date           string   `json:"date"`
	Close          float64  `json:"close"`
	MovingAverage  float64  `json:"moving_average"`
	StdDev         *float64 `json:"std_dev"`
	UpperBand      *float64 `json:"upper_band"`
	LowerBand      *float64 `json:"lower_band"`
	Signal         Signal   `json:"signal"`
	DeviationScore *float64 `json:"deviation_score"`
}

// NewSeriesPointDTO converts a domain point to its wire form.
func NewSeriesPointDTO(p SeriesPoint) SeriesPointDTO {
	dto := SeriesPointDTO{
		Instrument:    p.Instrument,
		Date:          p.Date.Format("2006-01-02"),
		Close:         p.Close.InexactFloat64(),
		MovingAverage: p.Stats.Mean,
		Signal:        p.Signal,
	}
	if p.Stats.Defined {
		sd, ub, lb := p.Stats.StdDev, p.UpperBand, p.LowerBand
		dto.StdDev, dto.UpperBand, dto.LowerBand = &sd, &ub, &lb
	}
	if p.DeviationDefined {
		ds := p.DeviationScore
		dto.DeviationScore = &ds
	}
	return dto
}

// NewSeriesPointDTOs converts a slice of domain points.
func NewSeriesPointDTOs(points []SeriesPoint) []SeriesPointDTO {
	out := make([]SeriesPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, NewSeriesPointDTO(p))
	}
	return out
}
