package types

// CreateTastingRequest represents the request body for saving a tasting
// record. Name and Origin are validated by the service so that every
// missing field can be reported at once; gin binding would stop at the
// first one.
type CreateTastingRequest struct {
	Name       string         `json:"name"`
	Origin     string         `json:"origin"`
	Notes      string         `json:"notes"`
	Group      *string        `json:"group"`
	Ratings    map[string]int `json:"ratings"`
	Flavors    []string       `json:"flavors"`
	ChartImage string         `json:"chart_image"`
}

// UpdateChartRequest carries a freshly captured radar-chart snapshot.
// The most recently completed capture wins; earlier captures are simply
// overwritten.
type UpdateChartRequest struct {
	ChartImage string `json:"chart_image" binding:"required"`
}

// ToggleFlavorRequest toggles membership of one tag in a record's flavor set
type ToggleFlavorRequest struct {
	Flavor string `json:"flavor" binding:"required"`
}

// AddGroupRequest registers a new group label with the known-group catalog
type AddGroupRequest struct {
	Name string `json:"name"`
}

// RegisterDeviceRequest represents the request body for registering a device
type RegisterDeviceRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// LoginDeviceRequest represents the request body for a device login
type LoginDeviceRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}
